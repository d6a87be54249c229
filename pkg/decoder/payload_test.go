package decoder

import (
	"bytes"
	"testing"
)

func TestParsePayload(t *testing.T) {
	want := []byte{0x09, 0x64, 0x00, 0x01}

	tests := []struct {
		name     string
		data     string
		encoding string
		wantErr  bool
	}{
		{"default base64", "CWQAAQ==", "", false},
		{"base64", "CWQAAQ==", "base64", false},
		{"hex", "09640001", "hex", false},
		{"hex with prefix", "0x09640001", "HEX", false},
		{"base58", "EvUhE", "base58", false},
		{"bad hex", "zz", "hex", true},
		{"unknown encoding", "00", "base32", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.data, tt.encoding)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePayload: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Errorf("got %x, want %x", got, want)
			}
		})
	}
}
