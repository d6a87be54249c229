// Package pool turns resolved operation parameters into ready-to-sign AMM
// instructions. The CLI and the HTTP API share it.
package pool

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-amm/internal/amm"
	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/token"
)

// Operation names used in logs and the journal.
const (
	OpInitPool = "init-pool"
	OpDeposit  = "deposit"
	OpSwap     = "swap"
	OpSmoke    = "smoke"
	OpTokens   = "tokens"
	OpMarket   = "market"
)

// Built is one assembled AMM instruction and the addresses it touches.
type Built struct {
	Operation   string             `json:"operation" yaml:"operation"`
	Keys        *amm.PoolKeys      `json:"pool_keys" yaml:"pool_keys"`
	UserLp      solana.PublicKey   `json:"user_lp" yaml:"user_lp"`
	Data        []byte             `json:"data" yaml:"-"`
	Instruction solana.Instruction `json:"-" yaml:"-"`
}

// Addresses returns the pool addresses plus the user LP account.
func (b *Built) Addresses() map[string]string {
	addrs := b.Keys.Addresses()
	if !b.UserLp.IsZero() {
		addrs["user_lp"] = b.UserLp.String()
	}
	return addrs
}

// EnvLines renders the pool keys followed by USER_LP_ACCOUNT.
func (b *Built) EnvLines() []string {
	lines := b.Keys.EnvLines()
	if !b.UserLp.IsZero() {
		lines = append(lines, "USER_LP_ACCOUNT="+b.UserLp.String())
	}
	return lines
}

// UserLpAccount is owner's associated LP token account. LP mints are always
// classic token mints.
func UserLpAccount(owner, lpMint solana.PublicKey) (solana.PublicKey, error) {
	return token.AssociatedAddress(owner, lpMint, solana.TokenProgramID)
}

// InitPool builds Initialize2 for p with payer funding the pool. The nonce is
// the authority bump; a zero open time becomes now minus 30 seconds.
func InitPool(p *config.InitPoolParams, payer solana.PublicKey, now time.Time) (*Built, error) {
	keys, err := amm.DerivePoolKeys(p.Programs.AMM, p.Market)
	if err != nil {
		return nil, err
	}
	userLp, err := UserLpAccount(payer, keys.LpMint.Address)
	if err != nil {
		return nil, err
	}

	openTime := p.OpenTime
	if openTime == 0 {
		openTime = amm.DefaultOpenTime(now)
	}
	params := amm.InitializeParams{
		Nonce:          uint64(keys.Authority.Bump),
		OpenTime:       openTime,
		InitPcAmount:   p.InitPc,
		InitCoinAmount: p.InitCoin,
	}
	accounts := keys.Initialize2AccountsFor(amm.Initialize2Accounts{
		TokenProgram:         p.TokenProgram,
		CoinMint:             p.CoinMint,
		PcMint:               p.PcMint,
		CreateFeeDestination: p.Programs.CreateFeeDestination,
		MarketProgram:        p.Programs.OpenBook,
		Payer:                payer,
		UserCoin:             p.UserCoin,
		UserPc:               p.UserPc,
		UserLp:               userLp,
	})

	return &Built{
		Operation:   OpInitPool,
		Keys:        keys,
		UserLp:      userLp,
		Data:        amm.EncodeInitialize2(params),
		Instruction: amm.NewInitialize2Instruction(p.Programs.AMM, params, accounts),
	}, nil
}

// Deposit builds a Deposit for owner.
func Deposit(p *config.DepositParams, owner solana.PublicKey) (*Built, error) {
	keys, err := amm.DerivePoolKeys(p.Programs.AMM, p.Market)
	if err != nil {
		return nil, err
	}
	userLp, err := UserLpAccount(owner, keys.LpMint.Address)
	if err != nil {
		return nil, err
	}

	params := amm.DepositParams{
		MaxCoinAmount:  p.MaxCoin,
		MaxPcAmount:    p.MaxPc,
		BaseSide:       p.BaseSide,
		OtherAmountMin: p.OtherAmountMin,
	}
	accounts := keys.DepositAccountsFor(amm.DepositAccounts{
		TokenProgram: p.TokenProgram,
		UserCoin:     p.UserCoin,
		UserPc:       p.UserPc,
		UserLp:       userLp,
		Owner:        owner,
		EventQueue:   p.EventQueue,
	})

	return &Built{
		Operation:   OpDeposit,
		Keys:        keys,
		UserLp:      userLp,
		Data:        amm.EncodeDeposit(params),
		Instruction: amm.NewDepositInstruction(p.Programs.AMM, params, accounts),
	}, nil
}

// Swap builds a SwapBaseIn for owner.
func Swap(p *config.SwapParams, owner solana.PublicKey) (*Built, error) {
	keys, err := amm.DerivePoolKeys(p.Programs.AMM, p.Market.Market)
	if err != nil {
		return nil, err
	}

	params := amm.SwapBaseInParams{
		AmountIn:         p.AmountIn,
		MinimumAmountOut: p.MinimumOut,
	}
	accounts := keys.SwapBaseInAccountsFor(amm.SwapBaseInAccounts{
		TokenProgram:      p.TokenProgram,
		MarketProgram:     p.Programs.OpenBook,
		Bids:              p.Market.Bids,
		Asks:              p.Market.Asks,
		EventQueue:        p.Market.EventQueue,
		MarketCoinVault:   p.Market.CoinVault,
		MarketPcVault:     p.Market.PcVault,
		MarketVaultSigner: p.Market.VaultSigner,
		UserSource:        p.Source,
		UserDestination:   p.Destination,
		Owner:             owner,
	}, p.WithTargetOrders)

	return &Built{
		Operation:   OpSwap,
		Keys:        keys,
		Data:        amm.EncodeSwapBaseIn(params),
		Instruction: amm.NewSwapBaseInInstruction(p.Programs.AMM, params, accounts),
	}, nil
}

// SmokeInstruction is an instruction with no accounts and no data. A deployed
// AMM program rejects it, which proves the program is reachable.
func SmokeInstruction(programID solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{}, []byte{})
}
