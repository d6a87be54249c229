// Package token builds the instructions that create test mints and fund the
// payer's associated token accounts, for both the classic token program and
// Token-2022.
package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	splToken "github.com/gagliardetto/solana-go/programs/token"
)

// Token2022ProgramID is the Token-2022 (token extensions) program.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// Mint account sizes.
const (
	BaseMintSize = 82
	// base mint padded to the account size, account type byte, then one
	// TransferHook TLV entry (2 type + 2 length + 64 value).
	TransferHookMintSize = 165 + 1 + 2 + 2 + 64
)

// Token program instruction tags.
const (
	tagMintTo                = 7
	tagInitializeMint2       = 20
	tagTransferHookExtension = 36

	transferHookInitialize = 0
	ataCreateIdempotent    = 1
)

// MintSize returns the account size for a mint, with or without the
// TransferHook extension.
func MintSize(withTransferHook bool) uint64 {
	if withTransferHook {
		return TransferHookMintSize
	}
	return BaseMintSize
}

// ProgramFor returns the classic token program or Token-2022.
func ProgramFor(useToken2022 bool) solana.PublicKey {
	if useToken2022 {
		return Token2022ProgramID
	}
	return solana.TokenProgramID
}

// AssociatedAddress derives owner's associated token account for mint under
// tokenProgram.
func AssociatedAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		owner.Bytes(),
		tokenProgram.Bytes(),
		mint.Bytes(),
	}, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token account: %w", err)
	}
	return addr, nil
}

// NewCreateAssociatedAccountInstruction creates owner's associated token
// account under tokenProgram, succeeding when it already exists
// (CreateIdempotent).
func NewCreateAssociatedAccountInstruction(payer, account, owner, mint, tokenProgram solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(solana.SPLAssociatedTokenAccountProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(owner, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(tokenProgram, false, false),
	}, []byte{ataCreateIdempotent})
}

// NewInitializeTransferHookInstruction installs hookProgram on an
// uninitialized Token-2022 mint. It must precede InitializeMint2.
func NewInitializeTransferHookInstruction(mint, authority, hookProgram solana.PublicKey) solana.Instruction {
	data := make([]byte, 0, 2+32+32)
	data = append(data, tagTransferHookExtension, transferHookInitialize)
	data = append(data, authority.Bytes()...)
	data = append(data, hookProgram.Bytes()...)
	return solana.NewInstruction(Token2022ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
	}, data)
}

// NewInitializeMint2Instruction initializes mint under tokenProgram. A nil
// freezeAuthority leaves the mint without one.
func NewInitializeMint2Instruction(tokenProgram, mint solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey) (solana.Instruction, error) {
	b := splToken.NewInitializeMint2InstructionBuilder().
		SetDecimals(decimals).
		SetMintAuthority(mintAuthority).
		SetMintAccount(mint)
	if freezeAuthority != nil {
		b.SetFreezeAuthority(*freezeAuthority)
	}
	ix, err := b.ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize_mint2: %w", err)
	}
	return onProgram(tokenProgram, ix)
}

// NewMintToInstruction mints amount base units to destination.
func NewMintToInstruction(tokenProgram, mint, destination, authority solana.PublicKey, amount uint64) (solana.Instruction, error) {
	ix, err := splToken.NewMintToInstruction(amount, mint, destination, authority, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build mint_to: %w", err)
	}
	return onProgram(tokenProgram, ix)
}

// onProgram re-addresses an instruction built for the classic token program.
// Token-2022 shares the classic layout for these instructions.
func onProgram(tokenProgram solana.PublicKey, ix solana.Instruction) (solana.Instruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(tokenProgram, ix.Accounts(), data), nil
}

// MintOptions describe one mint.
type MintOptions struct {
	TokenProgram solana.PublicKey
	// TransferHookProgram is installed when non-zero. Token-2022 only.
	TransferHookProgram solana.PublicKey
	Decimals            uint8
	// Amount minted to the payer's associated account; zero skips MintTo.
	Amount uint64
	// RentLamports funds the mint account, see MintSize.
	RentLamports uint64
}

// MintPlan is the single transaction that creates and funds one mint.
type MintPlan struct {
	Mint                solana.PrivateKey
	TokenProgram        solana.PublicKey
	TransferHookProgram solana.PublicKey
	Owner               solana.PublicKey
	Account             solana.PublicKey
	Instructions        []solana.Instruction
}

// MintAddress returns the new mint's address.
func (p *MintPlan) MintAddress() solana.PublicKey {
	return p.Mint.PublicKey()
}

// CreateMintPlan plans: create the mint account, optionally install the
// transfer hook, initialize the mint with payer as authority, create payer's
// associated account and mint opts.Amount into it. The mint key must sign.
func CreateMintPlan(payer solana.PublicKey, mint solana.PrivateKey, opts MintOptions) (*MintPlan, error) {
	tokenProgram := opts.TokenProgram
	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}
	withHook := !opts.TransferHookProgram.IsZero()
	if withHook && !tokenProgram.Equals(Token2022ProgramID) {
		return nil, fmt.Errorf("transfer hook requires the Token-2022 program, got %s", tokenProgram)
	}

	mintKey := mint.PublicKey()
	account, err := AssociatedAddress(payer, mintKey, tokenProgram)
	if err != nil {
		return nil, err
	}

	ixs := []solana.Instruction{
		system.NewCreateAccountInstruction(opts.RentLamports, MintSize(withHook), tokenProgram, payer, mintKey).Build(),
	}
	if withHook {
		ixs = append(ixs, NewInitializeTransferHookInstruction(mintKey, payer, opts.TransferHookProgram))
	}
	initMint, err := NewInitializeMint2Instruction(tokenProgram, mintKey, opts.Decimals, payer, nil)
	if err != nil {
		return nil, err
	}
	ixs = append(ixs, initMint, NewCreateAssociatedAccountInstruction(payer, account, payer, mintKey, tokenProgram))
	if opts.Amount > 0 {
		mintTo, err := NewMintToInstruction(tokenProgram, mintKey, account, payer, opts.Amount)
		if err != nil {
			return nil, err
		}
		ixs = append(ixs, mintTo)
	}

	return &MintPlan{
		Mint:                mint,
		TokenProgram:        tokenProgram,
		TransferHookProgram: opts.TransferHookProgram,
		Owner:               payer,
		Account:             account,
		Instructions:        ixs,
	}, nil
}

// PairEnvLines renders a coin/pc pair the way the token setup prints it.
func PairEnvLines(coin, pc *MintPlan) []string {
	lines := []string{
		"COIN_MINT=" + coin.MintAddress().String(),
		"PC_MINT=" + pc.MintAddress().String(),
		"USER_COIN_ACCOUNT=" + coin.Account.String(),
		"USER_PC_ACCOUNT=" + pc.Account.String(),
		"COIN_TOKEN_PROGRAM=" + coin.TokenProgram.String(),
		"PC_TOKEN_PROGRAM=" + pc.TokenProgram.String(),
	}
	if !coin.TransferHookProgram.IsZero() {
		lines = append(lines, "TRANSFER_HOOK_PROGRAM_ID="+coin.TransferHookProgram.String())
	}
	return lines
}

// SPLEnvLines renders the classic mints used by the order-book market.
func SPLEnvLines(coin, pc *MintPlan) []string {
	return []string{
		"COIN_MINT_SPL=" + coin.MintAddress().String(),
		"PC_MINT_SPL=" + pc.MintAddress().String(),
		"USER_COIN_ACCOUNT_SPL=" + coin.Account.String(),
		"USER_PC_ACCOUNT_SPL=" + pc.Account.String(),
	}
}
