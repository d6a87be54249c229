package amm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/pkg/decoder"
	"github.com/lugondev/go-amm/pkg/view"
)

// Instruction names as reported by the decoder.
const (
	NameInitialize2 = "initialize2"
	NameDeposit     = "deposit"
	NameSwapBaseIn  = "swap_base_in"
)

func decodeInitialize2(v *view.PayloadView) (any, error) {
	if v.Len() != Initialize2DataLen {
		return nil, fmt.Errorf("expected %d bytes, got %d", Initialize2DataLen, v.Len())
	}
	nonce, _ := v.U8(1)
	openTime, _ := v.U64(2)
	pc, _ := v.U64(10)
	coin, _ := v.U64(18)
	return &InitializeParams{
		Nonce:          uint64(nonce),
		OpenTime:       openTime,
		InitPcAmount:   pc,
		InitCoinAmount: coin,
	}, nil
}

func decodeDeposit(v *view.PayloadView) (any, error) {
	if v.Len() != DepositDataLen && v.Len() != DepositWithOtherMinDataLen {
		return nil, fmt.Errorf("expected %d or %d bytes, got %d", DepositDataLen, DepositWithOtherMinDataLen, v.Len())
	}
	maxCoin, _ := v.U64(1)
	maxPc, _ := v.U64(9)
	baseSide, _ := v.U64(17)
	p := &DepositParams{
		MaxCoinAmount: maxCoin,
		MaxPcAmount:   maxPc,
		BaseSide:      baseSide,
	}
	if v.Len() == DepositWithOtherMinDataLen {
		otherMin, _ := v.U64(25)
		p.OtherAmountMin = &otherMin
	}
	return p, nil
}

func decodeSwapBaseIn(v *view.PayloadView) (any, error) {
	if v.Len() != SwapBaseInDataLen {
		return nil, fmt.Errorf("expected %d bytes, got %d", SwapBaseInDataLen, v.Len())
	}
	amountIn, _ := v.U64(1)
	minOut, _ := v.U64(9)
	return &SwapBaseInParams{AmountIn: amountIn, MinimumAmountOut: minOut}, nil
}

// Decoders returns one tag decoder per supported instruction.
func Decoders(programID solana.PublicKey) []decoder.Decoder {
	return []decoder.Decoder{
		decoder.NewTagDecoder(NameInitialize2, programID, TagInitialize2, decodeInitialize2),
		decoder.NewTagDecoder(NameDeposit, programID, TagDeposit, decodeDeposit),
		decoder.NewTagDecoder(NameSwapBaseIn, programID, TagSwapBaseIn, decodeSwapBaseIn),
	}
}

// RegisterDecoders adds the AMM decoders for programID to registry.
func RegisterDecoders(registry *decoder.Registry, programID solana.PublicKey) {
	for _, d := range Decoders(programID) {
		registry.RegisterForProgram(programID, d)
	}
}

// DecodeInstruction decodes a payload produced by one of the encoders. The
// returned Data is *InitializeParams, *DepositParams or *SwapBaseInParams.
func DecodeInstruction(data []byte) (*decoder.Instruction, error) {
	if len(data) == 0 {
		return nil, amerrors.DecodeFailed("instruction", fmt.Errorf("empty payload"))
	}
	for _, d := range Decoders(solana.PublicKey{}) {
		if !d.CanDecode(data) {
			continue
		}
		ix, err := d.Decode(data)
		if err != nil {
			return nil, amerrors.DecodeFailed(d.GetName(), err)
		}
		return ix, nil
	}
	return nil, amerrors.DecodeFailed("instruction", fmt.Errorf("unknown tag %d", data[0]))
}
