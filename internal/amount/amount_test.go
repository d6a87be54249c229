package amount

import (
	"testing"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		ui       string
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{"1", 6, 1_000_000, false},
		{"1.5", 6, 1_500_000, false},
		{"0.000001", 6, 1, false},
		{"1000", 0, 1000, false},
		{"1.25", 9, 1_250_000_000, false},
		{"18446744073709551615", 0, 18446744073709551615, false},
		{"18446744073709551616", 0, 0, true},
		{"0.0000001", 6, 0, true},
		{"-1", 6, 0, true},
		{"abc", 6, 0, true},
		{"", 6, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.ui, func(t *testing.T) {
			got, err := ToBaseUnits(tt.ui, tt.decimals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToBaseUnits(%q, %d) error = %v, wantErr %v", tt.ui, tt.decimals, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ToBaseUnits(%q, %d) = %d, want %d", tt.ui, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		units    uint64
		decimals uint8
		want     string
	}{
		{1_000_000, 6, "1"},
		{1_500_000, 6, "1.5"},
		{1, 6, "0.000001"},
		{0, 6, "0"},
		{18446744073709551615, 0, "18446744073709551615"},
	}

	for _, tt := range tests {
		if got := FromBaseUnits(tt.units, tt.decimals); got != tt.want {
			t.Errorf("FromBaseUnits(%d, %d) = %q, want %q", tt.units, tt.decimals, got, tt.want)
		}
	}
}

func TestFormatSOL(t *testing.T) {
	if got := FormatSOL(2_500_000_000); got != "2.5 SOL" {
		t.Errorf("Expected 2.5 SOL, got %q", got)
	}
}
