// Package market plans the order-book accounts a pool is initialized
// against: the market itself, its queues and books, the vaults and the vault
// signer.
package market

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/token"
)

// Account sizes in bytes.
const (
	MarketSize       = 388
	EventQueueSize   = 262144
	RequestQueueSize = 5120
	OrderBookSize    = 65536
)

// SeedVaultSigner derives the market vault signer under the order-book program.
const SeedVaultSigner = "vault_signer"

// RentFunc returns the rent-exempt minimum for size bytes.
type RentFunc func(size uint64) (uint64, error)

// Step is one transaction of the plan.
type Step struct {
	Name         string
	Instructions []solana.Instruction
	// Signers besides the payer.
	Signers []solana.PrivateKey
}

// Plan lists the market addresses and the steps that create them.
type Plan struct {
	OpenBook     solana.PublicKey `json:"openbook" yaml:"openbook"`
	Market       solana.PublicKey `json:"market" yaml:"market"`
	EventQueue   solana.PublicKey `json:"event_queue" yaml:"event_queue"`
	RequestQueue solana.PublicKey `json:"request_queue" yaml:"request_queue"`
	Bids         solana.PublicKey `json:"bids" yaml:"bids"`
	Asks         solana.PublicKey `json:"asks" yaml:"asks"`
	CoinVault    solana.PublicKey `json:"coin_vault" yaml:"coin_vault"`
	PcVault      solana.PublicKey `json:"pc_vault" yaml:"pc_vault"`
	VaultSigner  solana.PublicKey `json:"vault_signer" yaml:"vault_signer"`

	Steps []Step `json:"-" yaml:"-"`
}

// DeriveVaultSigner derives the vault signer PDA of openBook.
func DeriveVaultSigner(openBook solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(SeedVaultSigner)}, openBook)
	if err != nil {
		return solana.PublicKey{}, amerrors.DerivationExhausted(SeedVaultSigner, err)
	}
	return addr, nil
}

// CreatePlan plans a market for the classic coinMint/pcMint pair. Every
// program-owned account gets a fresh keypair; vaults are payer's associated
// accounts under the classic token program.
func CreatePlan(payer, openBook, coinMint, pcMint solana.PublicKey, rent RentFunc) (*Plan, error) {
	p := &Plan{OpenBook: openBook}

	accounts := []struct {
		name string
		size uint64
		dst  *solana.PublicKey
	}{
		{"market", MarketSize, &p.Market},
		{"event queue", EventQueueSize, &p.EventQueue},
		{"request queue", RequestQueueSize, &p.RequestQueue},
		{"bids", OrderBookSize, &p.Bids},
		{"asks", OrderBookSize, &p.Asks},
	}
	for _, a := range accounts {
		lamports, err := rent(a.size)
		if err != nil {
			return nil, fmt.Errorf("rent for %s: %w", a.name, err)
		}
		key := solana.NewWallet().PrivateKey
		*a.dst = key.PublicKey()
		p.Steps = append(p.Steps, Step{
			Name: a.name,
			Instructions: []solana.Instruction{
				system.NewCreateAccountInstruction(lamports, a.size, openBook, payer, key.PublicKey()).Build(),
			},
			Signers: []solana.PrivateKey{key},
		})
	}

	vaults := []struct {
		name string
		mint solana.PublicKey
		dst  *solana.PublicKey
	}{
		{"coin vault", coinMint, &p.CoinVault},
		{"pc vault", pcMint, &p.PcVault},
	}
	for _, v := range vaults {
		addr, err := token.AssociatedAddress(payer, v.mint, solana.TokenProgramID)
		if err != nil {
			return nil, err
		}
		*v.dst = addr
		p.Steps = append(p.Steps, Step{
			Name: v.name,
			Instructions: []solana.Instruction{
				token.NewCreateAssociatedAccountInstruction(payer, addr, payer, v.mint, solana.TokenProgramID),
			},
		})
	}

	var err error
	if p.VaultSigner, err = DeriveVaultSigner(openBook); err != nil {
		return nil, err
	}
	return p, nil
}

// EnvLines renders the plan the way the market setup prints it.
func (p *Plan) EnvLines() []string {
	return []string{
		"MARKET_ADDRESS=" + p.Market.String(),
		"MARKET_EVENT_Q=" + p.EventQueue.String(),
		"MARKET_REQUEST_Q=" + p.RequestQueue.String(),
		"MARKET_BIDS=" + p.Bids.String(),
		"MARKET_ASKS=" + p.Asks.String(),
		"MARKET_COIN_VAULT=" + p.CoinVault.String(),
		"MARKET_PC_VAULT=" + p.PcVault.String(),
		"MARKET_VAULT_SIGNER=" + p.VaultSigner.String(),
	}
}

// Addresses returns the market addresses keyed by role, for journaling.
func (p *Plan) Addresses() map[string]string {
	return map[string]string{
		"market":        p.Market.String(),
		"event_queue":   p.EventQueue.String(),
		"request_queue": p.RequestQueue.String(),
		"bids":          p.Bids.String(),
		"asks":          p.Asks.String(),
		"coin_vault":    p.CoinVault.String(),
		"pc_vault":      p.PcVault.String(),
		"vault_signer":  p.VaultSigner.String(),
	}
}
