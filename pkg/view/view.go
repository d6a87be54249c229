// Package view provides bounds-checked, allocation-free readers over
// fixed-layout little-endian instruction payloads.
package view

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrInvalidBuffer = errors.New("invalid buffer size")
	ErrOutOfRange    = errors.New("read out of range")
)

// PayloadView reads a one-byte tag followed by fixed-width fields.
type PayloadView struct {
	buffer []byte
}

func NewPayloadView(buffer []byte) (*PayloadView, error) {
	if len(buffer) < 1 {
		return nil, ErrInvalidBuffer
	}
	return &PayloadView{buffer: buffer}, nil
}

// Tag returns the leading instruction tag.
func (v *PayloadView) Tag() uint8 {
	return v.buffer[0]
}

// Len returns the payload length including the tag.
func (v *PayloadView) Len() int {
	return len(v.buffer)
}

func (v *PayloadView) U8(offset int) (uint8, error) {
	if offset < 0 || offset >= len(v.buffer) {
		return 0, fmt.Errorf("%w: u8 at %d, len %d", ErrOutOfRange, offset, len(v.buffer))
	}
	return v.buffer[offset], nil
}

func (v *PayloadView) U64(offset int) (uint64, error) {
	if offset < 0 || offset+8 > len(v.buffer) {
		return 0, fmt.Errorf("%w: u64 at %d, len %d", ErrOutOfRange, offset, len(v.buffer))
	}
	return binary.LittleEndian.Uint64(v.buffer[offset : offset+8]), nil
}

func (v *PayloadView) PublicKey(offset int) (solana.PublicKey, error) {
	if offset < 0 || offset+32 > len(v.buffer) {
		return solana.PublicKey{}, fmt.Errorf("%w: pubkey at %d, len %d", ErrOutOfRange, offset, len(v.buffer))
	}
	return solana.PublicKeyFromBytes(v.buffer[offset : offset+32]), nil
}

// Body returns the bytes after the tag.
func (v *PayloadView) Body() []byte {
	return v.buffer[1:]
}

// FullData returns the underlying payload.
func (v *PayloadView) FullData() []byte {
	return v.buffer
}
