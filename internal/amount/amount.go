// Package amount converts between UI amounts ("1.5") and integer base units.
package amount

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// SOLDecimals is the number of decimals of lamports per SOL.
const SOLDecimals = 9

// ToBaseUnits converts a decimal string to base units of a token with the
// given decimals. Negative values, values with more fractional digits than
// decimals, and values above the u64 range are rejected.
func ToBaseUnits(ui string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(ui)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", ui, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", ui)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimal places", ui, decimals)
	}
	n := shifted.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("invalid amount %q: exceeds u64", ui)
	}
	return n.Uint64(), nil
}

// FromBaseUnits renders base units as a UI amount with trailing zeros trimmed.
func FromBaseUnits(units uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(decimals)).String()
}

// FormatSOL renders lamports as SOL.
func FormatSOL(lamports uint64) string {
	return FromBaseUnits(lamports, SOLDecimals) + " SOL"
}
