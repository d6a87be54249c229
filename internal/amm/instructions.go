package amm

import (
	"encoding/binary"
	"time"
)

// Instruction tags understood by the AMM program.
const (
	TagInitialize2 uint8 = 1
	TagDeposit     uint8 = 3
	TagSwapBaseIn  uint8 = 9
)

// Payload sizes, tag included.
const (
	Initialize2DataLen         = 1 + 1 + 8 + 8 + 8
	DepositDataLen             = 1 + 8 + 8 + 8
	DepositWithOtherMinDataLen = DepositDataLen + 8
	SwapBaseInDataLen          = 1 + 8 + 8
)

// Base side selectors for deposits.
const (
	BaseSideCoin uint64 = 0
	BaseSidePc   uint64 = 1
)

// openTimeSkew puts the default open time safely in the past so the program's
// "pool already open" check passes.
const openTimeSkew = 30 * time.Second

// InitializeParams are the Initialize2 arguments. Nonce is masked to its low
// byte on encoding.
type InitializeParams struct {
	Nonce          uint64 `json:"nonce" yaml:"nonce"`
	OpenTime       uint64 `json:"open_time" yaml:"open_time"`
	InitPcAmount   uint64 `json:"init_pc_amount" yaml:"init_pc_amount"`
	InitCoinAmount uint64 `json:"init_coin_amount" yaml:"init_coin_amount"`
}

// DepositParams are the Deposit arguments. OtherAmountMin is only encoded when
// non-nil, which changes the payload length from 25 to 33 bytes.
type DepositParams struct {
	MaxCoinAmount  uint64  `json:"max_coin_amount" yaml:"max_coin_amount"`
	MaxPcAmount    uint64  `json:"max_pc_amount" yaml:"max_pc_amount"`
	BaseSide       uint64  `json:"base_side" yaml:"base_side"`
	OtherAmountMin *uint64 `json:"other_amount_min,omitempty" yaml:"other_amount_min,omitempty"`
}

// SwapBaseInParams are the exact-input swap arguments.
type SwapBaseInParams struct {
	AmountIn         uint64 `json:"amount_in" yaml:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out" yaml:"minimum_amount_out"`
}

// DefaultOpenTime returns now minus 30 seconds in unix seconds.
func DefaultOpenTime(now time.Time) uint64 {
	return uint64(now.Add(-openTimeSkew).Unix())
}

// EncodeInitialize2 packs tag, nonce, open time, pc amount, coin amount.
func EncodeInitialize2(p InitializeParams) []byte {
	buf := make([]byte, 0, Initialize2DataLen)
	buf = append(buf, TagInitialize2, byte(p.Nonce&0xff))
	buf = binary.LittleEndian.AppendUint64(buf, p.OpenTime)
	buf = binary.LittleEndian.AppendUint64(buf, p.InitPcAmount)
	buf = binary.LittleEndian.AppendUint64(buf, p.InitCoinAmount)
	return buf
}

// EncodeDeposit packs tag, max coin, max pc, base side and the optional
// other-amount minimum.
func EncodeDeposit(p DepositParams) []byte {
	size := DepositDataLen
	if p.OtherAmountMin != nil {
		size = DepositWithOtherMinDataLen
	}

	buf := make([]byte, 0, size)
	buf = append(buf, TagDeposit)
	buf = binary.LittleEndian.AppendUint64(buf, p.MaxCoinAmount)
	buf = binary.LittleEndian.AppendUint64(buf, p.MaxPcAmount)
	buf = binary.LittleEndian.AppendUint64(buf, p.BaseSide)
	if p.OtherAmountMin != nil {
		buf = binary.LittleEndian.AppendUint64(buf, *p.OtherAmountMin)
	}
	return buf
}

// EncodeSwapBaseIn packs tag, amount in, minimum amount out.
func EncodeSwapBaseIn(p SwapBaseInParams) []byte {
	buf := make([]byte, 0, SwapBaseInDataLen)
	buf = append(buf, TagSwapBaseIn)
	buf = binary.LittleEndian.AppendUint64(buf, p.AmountIn)
	buf = binary.LittleEndian.AppendUint64(buf, p.MinimumAmountOut)
	return buf
}
