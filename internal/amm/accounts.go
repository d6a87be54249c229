package amm

import (
	"github.com/gagliardetto/solana-go"
)

// The account tables below are positional: the program binds accounts by
// index, so order and flags must match its interface exactly.

// Initialize2Accounts are the accounts of an Initialize2 call.
type Initialize2Accounts struct {
	TokenProgram         solana.PublicKey
	Pool                 solana.PublicKey
	Authority            solana.PublicKey
	OpenOrders           solana.PublicKey
	LpMint               solana.PublicKey
	CoinMint             solana.PublicKey
	PcMint               solana.PublicKey
	CoinVault            solana.PublicKey
	PcVault              solana.PublicKey
	TargetOrders         solana.PublicKey
	Config               solana.PublicKey
	CreateFeeDestination solana.PublicKey
	MarketProgram        solana.PublicKey
	Market               solana.PublicKey
	Payer                solana.PublicKey
	UserCoin             solana.PublicKey
	UserPc               solana.PublicKey
	UserLp               solana.PublicKey
}

// Metas returns the 21-entry account list. UserCoin and UserPc are writable:
// the program debits the initial liquidity from them. Older client scripts
// passed both read-only.
func (a *Initialize2Accounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(a.OpenOrders, true, false),
		solana.NewAccountMeta(a.LpMint, true, false),
		solana.NewAccountMeta(a.CoinMint, false, false),
		solana.NewAccountMeta(a.PcMint, false, false),
		solana.NewAccountMeta(a.CoinVault, true, false),
		solana.NewAccountMeta(a.PcVault, true, false),
		solana.NewAccountMeta(a.TargetOrders, true, false),
		solana.NewAccountMeta(a.Config, false, false),
		solana.NewAccountMeta(a.CreateFeeDestination, true, false),
		solana.NewAccountMeta(a.MarketProgram, false, false),
		solana.NewAccountMeta(a.Market, false, false),
		solana.NewAccountMeta(a.Payer, true, true),
		solana.NewAccountMeta(a.UserCoin, true, false),
		solana.NewAccountMeta(a.UserPc, true, false),
		solana.NewAccountMeta(a.UserLp, true, false),
	}
}

// DepositAccounts are the accounts of a Deposit call.
type DepositAccounts struct {
	TokenProgram solana.PublicKey
	Pool         solana.PublicKey
	Authority    solana.PublicKey
	OpenOrders   solana.PublicKey
	TargetOrders solana.PublicKey
	LpMint       solana.PublicKey
	CoinVault    solana.PublicKey
	PcVault      solana.PublicKey
	Market       solana.PublicKey
	UserCoin     solana.PublicKey
	UserPc       solana.PublicKey
	UserLp       solana.PublicKey
	Owner        solana.PublicKey
	EventQueue   solana.PublicKey
}

// Metas returns the 14-entry account list.
func (a *DepositAccounts) Metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(a.OpenOrders, false, false),
		solana.NewAccountMeta(a.TargetOrders, true, false),
		solana.NewAccountMeta(a.LpMint, true, false),
		solana.NewAccountMeta(a.CoinVault, true, false),
		solana.NewAccountMeta(a.PcVault, true, false),
		solana.NewAccountMeta(a.Market, false, false),
		solana.NewAccountMeta(a.UserCoin, true, false),
		solana.NewAccountMeta(a.UserPc, true, false),
		solana.NewAccountMeta(a.UserLp, true, false),
		solana.NewAccountMeta(a.Owner, false, true),
		solana.NewAccountMeta(a.EventQueue, false, false),
	}
}

// SwapBaseInAccounts are the accounts of a SwapBaseIn call. TargetOrders is
// optional; when zero the 17-account form is produced.
type SwapBaseInAccounts struct {
	TokenProgram      solana.PublicKey
	Pool              solana.PublicKey
	Authority         solana.PublicKey
	OpenOrders        solana.PublicKey
	TargetOrders      solana.PublicKey
	CoinVault         solana.PublicKey
	PcVault           solana.PublicKey
	MarketProgram     solana.PublicKey
	Market            solana.PublicKey
	Bids              solana.PublicKey
	Asks              solana.PublicKey
	EventQueue        solana.PublicKey
	MarketCoinVault   solana.PublicKey
	MarketPcVault     solana.PublicKey
	MarketVaultSigner solana.PublicKey
	UserSource        solana.PublicKey
	UserDestination   solana.PublicKey
	Owner             solana.PublicKey
}

// Metas returns the 17- or 18-entry account list.
func (a *SwapBaseInAccounts) Metas() solana.AccountMetaSlice {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.Pool, true, false),
		solana.NewAccountMeta(a.Authority, false, false),
		solana.NewAccountMeta(a.OpenOrders, true, false),
	}
	if !a.TargetOrders.IsZero() {
		metas = append(metas, solana.NewAccountMeta(a.TargetOrders, true, false))
	}
	return append(metas,
		solana.NewAccountMeta(a.CoinVault, true, false),
		solana.NewAccountMeta(a.PcVault, true, false),
		solana.NewAccountMeta(a.MarketProgram, false, false),
		solana.NewAccountMeta(a.Market, true, false),
		solana.NewAccountMeta(a.Bids, true, false),
		solana.NewAccountMeta(a.Asks, true, false),
		solana.NewAccountMeta(a.EventQueue, true, false),
		solana.NewAccountMeta(a.MarketCoinVault, true, false),
		solana.NewAccountMeta(a.MarketPcVault, true, false),
		solana.NewAccountMeta(a.MarketVaultSigner, false, false),
		solana.NewAccountMeta(a.UserSource, true, false),
		solana.NewAccountMeta(a.UserDestination, true, false),
		solana.NewAccountMeta(a.Owner, false, true),
	)
}

// NewInitialize2Instruction builds the Initialize2 instruction.
func NewInitialize2Instruction(programID solana.PublicKey, params InitializeParams, accounts *Initialize2Accounts) solana.Instruction {
	return solana.NewInstruction(programID, accounts.Metas(), EncodeInitialize2(params))
}

// NewDepositInstruction builds the Deposit instruction.
func NewDepositInstruction(programID solana.PublicKey, params DepositParams, accounts *DepositAccounts) solana.Instruction {
	return solana.NewInstruction(programID, accounts.Metas(), EncodeDeposit(params))
}

// NewSwapBaseInInstruction builds the SwapBaseIn instruction.
func NewSwapBaseInInstruction(programID solana.PublicKey, params SwapBaseInParams, accounts *SwapBaseInAccounts) solana.Instruction {
	return solana.NewInstruction(programID, accounts.Metas(), EncodeSwapBaseIn(params))
}

// Initialize2AccountsFor fills the derived part of an Initialize2 account list.
func (k *PoolKeys) Initialize2AccountsFor(a Initialize2Accounts) *Initialize2Accounts {
	a.Pool = k.Pool.Address
	a.Authority = k.Authority.Address
	a.OpenOrders = k.OpenOrders.Address
	a.LpMint = k.LpMint.Address
	a.CoinVault = k.CoinVault.Address
	a.PcVault = k.PcVault.Address
	a.TargetOrders = k.TargetOrders.Address
	a.Config = k.Config.Address
	a.Market = k.Market
	return &a
}

// DepositAccountsFor fills the derived part of a Deposit account list.
func (k *PoolKeys) DepositAccountsFor(a DepositAccounts) *DepositAccounts {
	a.Pool = k.Pool.Address
	a.Authority = k.Authority.Address
	a.OpenOrders = k.OpenOrders.Address
	a.TargetOrders = k.TargetOrders.Address
	a.LpMint = k.LpMint.Address
	a.CoinVault = k.CoinVault.Address
	a.PcVault = k.PcVault.Address
	a.Market = k.Market
	return &a
}

// SwapBaseInAccountsFor fills the derived part of a SwapBaseIn account list.
// withTargetOrders selects the 18-account form.
func (k *PoolKeys) SwapBaseInAccountsFor(a SwapBaseInAccounts, withTargetOrders bool) *SwapBaseInAccounts {
	a.Pool = k.Pool.Address
	a.Authority = k.Authority.Address
	a.OpenOrders = k.OpenOrders.Address
	a.CoinVault = k.CoinVault.Address
	a.PcVault = k.PcVault.Address
	a.Market = k.Market
	a.TargetOrders = solana.PublicKey{}
	if withTargetOrders {
		a.TargetOrders = k.TargetOrders.Address
	}
	return &a
}
