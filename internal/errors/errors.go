// Package errors defines the coded error type used throughout go-amm.
//
// Every failure surfaced to a caller carries a stable code so the CLI and the
// HTTP API can tell configuration problems apart from derivation failures and
// rejections reported by the remote node. All of them are terminal for the
// call that produced them; nothing in this module retries.
package errors

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ErrCodeMissingConfig       = "MISSING_CONFIG"
	ErrCodeInvalidConfig       = "INVALID_CONFIG"
	ErrCodeDerivationExhausted = "DERIVATION_EXHAUSTED"
	ErrCodeRemoteRejected      = "REMOTE_REJECTED"
	ErrCodeInvalidKeypair      = "INVALID_KEYPAIR"
	ErrCodeDecodeFailed        = "DECODE_FAILED"
	ErrCodeCustom              = "CUSTOM"
)

// Error is a coded error.
type Error struct {
	// Code is a unique error code for this error type.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Details contains additional error context.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches the target by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// NewError creates a new Error.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	ErrMissingConfig       = NewError(ErrCodeMissingConfig, "missing configuration")
	ErrInvalidConfig       = NewError(ErrCodeInvalidConfig, "invalid configuration")
	ErrDerivationExhausted = NewError(ErrCodeDerivationExhausted, "no valid bump seed")
	ErrRemoteRejected      = NewError(ErrCodeRemoteRejected, "remote rejected transaction")
	ErrInvalidKeypair      = NewError(ErrCodeInvalidKeypair, "invalid keypair")
	ErrDecodeFailed        = NewError(ErrCodeDecodeFailed, "decode failed")
)

// MissingConfig reports a required configuration name with no value and no fallback.
func MissingConfig(name string) *Error {
	return NewError(ErrCodeMissingConfig, fmt.Sprintf("environment variable %s is not set", name)).
		WithDetails(map[string]any{"name": name})
}

// InvalidConfig reports a configuration value that is present but unusable.
func InvalidConfig(name string, cause error) *Error {
	return NewError(ErrCodeInvalidConfig, fmt.Sprintf("invalid value for %s", name)).
		WithCause(cause).
		WithDetails(map[string]any{"name": name})
}

// DerivationExhausted reports that no bump in 0..255 yields an off-curve address.
func DerivationExhausted(seed string, cause error) *Error {
	return NewError(ErrCodeDerivationExhausted, fmt.Sprintf("cannot derive address for seed %q", seed)).
		WithCause(cause).
		WithDetails(map[string]any{"seed": seed})
}

// RemoteRejected wraps the node's message verbatim.
func RemoteRejected(operation string, cause error) *Error {
	return NewError(ErrCodeRemoteRejected, fmt.Sprintf("%s rejected", operation)).
		WithCause(cause).
		WithDetails(map[string]any{"operation": operation})
}

// InvalidKeypair reports unreadable or malformed key material.
func InvalidKeypair(path string, cause error) *Error {
	return NewError(ErrCodeInvalidKeypair, fmt.Sprintf("cannot load keypair %s", path)).WithCause(cause)
}

// DecodeFailed creates an error for decoding failures.
func DecodeFailed(what string, cause error) *Error {
	return NewError(ErrCodeDecodeFailed, fmt.Sprintf("failed to decode %s", what)).WithCause(cause)
}

// Custom creates a custom error with the given message.
func Custom(message string) *Error {
	return NewError(ErrCodeCustom, message)
}

// Code returns the code of the first *Error in err's chain, or "" if none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns a plain error with the given text.
func New(text string) error {
	return errors.New(text)
}
