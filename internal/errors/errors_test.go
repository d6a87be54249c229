package errors

import (
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := MissingConfig("MARKET_ADDRESS")
	if !Is(err, ErrMissingConfig) {
		t.Errorf("Expected MissingConfig to match ErrMissingConfig")
	}
	if Is(err, ErrRemoteRejected) {
		t.Errorf("Expected MissingConfig not to match ErrRemoteRejected")
	}

	wrapped := fmt.Errorf("init pool: %w", err)
	if !Is(wrapped, ErrMissingConfig) {
		t.Errorf("Expected wrapped error to match ErrMissingConfig")
	}
	if got := Code(wrapped); got != ErrCodeMissingConfig {
		t.Errorf("Expected code %s, got %s", ErrCodeMissingConfig, got)
	}
}

func TestRemoteRejectedKeepsCauseVerbatim(t *testing.T) {
	cause := New("Transaction simulation failed: custom program error: 0x1e")
	err := RemoteRejected("swap", cause)

	if err.Unwrap() != cause {
		t.Fatalf("Expected cause to be preserved")
	}
	want := "REMOTE_REJECTED: swap rejected: Transaction simulation failed: custom program error: 0x1e"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := Code(New("plain")); got != "" {
		t.Errorf("Expected empty code, got %q", got)
	}
	if Wrap(nil, "ctx") != nil {
		t.Errorf("Expected Wrap(nil) to be nil")
	}
}

func TestMissingConfigDetails(t *testing.T) {
	err := MissingConfig("SWAP_SOURCE_ATA")
	if err.Details["name"] != "SWAP_SOURCE_ATA" {
		t.Errorf("Expected name detail, got %v", err.Details)
	}
	if err.Error() != "MISSING_CONFIG: environment variable SWAP_SOURCE_ATA is not set" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
