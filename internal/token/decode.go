package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-amm/pkg/decoder"
	"github.com/lugondev/go-amm/pkg/view"
)

const tagTransfer = 3

// Decoded instruction names.
const (
	NameTransfer               = "transfer"
	NameMintTo                 = "mint_to"
	NameInitializeMint2        = "initialize_mint2"
	NameInitializeTransferHook = "initialize_transfer_hook"
)

// AmountData is the payload of Transfer and MintTo.
type AmountData struct {
	Amount uint64 `json:"amount" yaml:"amount"`
}

// InitializeMint2Data is the payload of InitializeMint2.
type InitializeMint2Data struct {
	Decimals        uint8             `json:"decimals" yaml:"decimals"`
	MintAuthority   solana.PublicKey  `json:"mint_authority" yaml:"mint_authority"`
	FreezeAuthority *solana.PublicKey `json:"freeze_authority,omitempty" yaml:"freeze_authority,omitempty"`
}

// TransferHookData is the payload of the transfer-hook Initialize extension.
type TransferHookData struct {
	Authority solana.PublicKey `json:"authority" yaml:"authority"`
	Program   solana.PublicKey `json:"program" yaml:"program"`
}

func decodeAmount(v *view.PayloadView) (any, error) {
	if v.Len() != 9 {
		return nil, fmt.Errorf("expected 9 bytes, got %d", v.Len())
	}
	amount, _ := v.U64(1)
	return &AmountData{Amount: amount}, nil
}

func decodeInitializeMint2(v *view.PayloadView) (any, error) {
	decimals, err := v.U8(1)
	if err != nil {
		return nil, err
	}
	authority, err := v.PublicKey(2)
	if err != nil {
		return nil, err
	}
	option, err := v.U8(34)
	if err != nil {
		return nil, err
	}

	d := &InitializeMint2Data{Decimals: decimals, MintAuthority: authority}
	switch option {
	case 0:
	case 1:
		freeze, err := v.PublicKey(35)
		if err != nil {
			return nil, err
		}
		d.FreezeAuthority = &freeze
	default:
		return nil, fmt.Errorf("invalid freeze authority option %d", option)
	}
	return d, nil
}

func decodeTransferHook(v *view.PayloadView) (any, error) {
	sub, err := v.U8(1)
	if err != nil {
		return nil, err
	}
	if sub != transferHookInitialize {
		return nil, fmt.Errorf("unsupported transfer hook instruction %d", sub)
	}
	authority, err := v.PublicKey(2)
	if err != nil {
		return nil, err
	}
	program, err := v.PublicKey(34)
	if err != nil {
		return nil, err
	}
	return &TransferHookData{Authority: authority, Program: program}, nil
}

// Decoders returns decoders for the instructions CreateMintPlan emits, plus
// Transfer, for tokenProgram. The transfer-hook decoder is only included for
// Token-2022.
func Decoders(tokenProgram solana.PublicKey) []decoder.Decoder {
	decoders := []decoder.Decoder{
		decoder.NewTagDecoder(NameTransfer, tokenProgram, tagTransfer, decodeAmount),
		decoder.NewTagDecoder(NameMintTo, tokenProgram, tagMintTo, decodeAmount),
		decoder.NewTagDecoder(NameInitializeMint2, tokenProgram, tagInitializeMint2, decodeInitializeMint2),
	}
	if tokenProgram.Equals(Token2022ProgramID) {
		decoders = append(decoders,
			decoder.NewTagDecoder(NameInitializeTransferHook, tokenProgram, tagTransferHookExtension, decodeTransferHook))
	}
	return decoders
}

// RegisterDecoders adds decoders for both token programs to registry.
func RegisterDecoders(registry *decoder.Registry) {
	for _, program := range []solana.PublicKey{solana.TokenProgramID, Token2022ProgramID} {
		for _, d := range Decoders(program) {
			registry.RegisterForProgram(program, d)
		}
	}
}
