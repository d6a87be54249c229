package amm

import (
	"github.com/gagliardetto/solana-go"

	amerrors "github.com/lugondev/go-amm/internal/errors"
)

// DerivedAddress is a program-derived address and the bump that produced it.
type DerivedAddress struct {
	Address solana.PublicKey `json:"address" yaml:"address"`
	Bump    uint8            `json:"bump" yaml:"bump"`
}

// findProgramAddress is swapped in tests to exercise the exhausted path.
var findProgramAddress = solana.FindProgramAddress

func derive(seed Seed, seeds [][]byte, programID solana.PublicKey) (DerivedAddress, error) {
	addr, bump, err := findProgramAddress(seeds, programID)
	if err != nil {
		return DerivedAddress{}, amerrors.DerivationExhausted(seed.String(), err)
	}
	return DerivedAddress{Address: addr, Bump: bump}, nil
}

// DeriveAuthority derives the pool authority. Its bump is the nonce passed to
// Initialize2.
func DeriveAuthority(programID solana.PublicKey) (DerivedAddress, error) {
	return derive(SeedAuthority, [][]byte{SeedAuthority.Bytes()}, programID)
}

// DeriveConfig derives the program-wide config account.
func DeriveConfig(programID solana.PublicKey) (DerivedAddress, error) {
	return derive(SeedConfig, [][]byte{SeedConfig.Bytes()}, programID)
}

// DeriveForMarket derives a per-market account from
// [programID, marketID, seed].
func DeriveForMarket(programID, marketID solana.PublicKey, seed Seed) (DerivedAddress, error) {
	return derive(seed, [][]byte{programID.Bytes(), marketID.Bytes(), seed.Bytes()}, programID)
}

// PoolKeys holds every address derived for one pool.
type PoolKeys struct {
	ProgramID    solana.PublicKey `json:"program_id" yaml:"program_id"`
	Market       solana.PublicKey `json:"market" yaml:"market"`
	Authority    DerivedAddress   `json:"authority" yaml:"authority"`
	Config       DerivedAddress   `json:"config" yaml:"config"`
	Pool         DerivedAddress   `json:"pool" yaml:"pool"`
	OpenOrders   DerivedAddress   `json:"open_orders" yaml:"open_orders"`
	TargetOrders DerivedAddress   `json:"target_orders" yaml:"target_orders"`
	LpMint       DerivedAddress   `json:"lp_mint" yaml:"lp_mint"`
	CoinVault    DerivedAddress   `json:"coin_vault" yaml:"coin_vault"`
	PcVault      DerivedAddress   `json:"pc_vault" yaml:"pc_vault"`
}

// DerivePoolKeys derives all pool addresses for a market. The first failing
// derivation aborts the whole call.
func DerivePoolKeys(programID, marketID solana.PublicKey) (*PoolKeys, error) {
	keys := &PoolKeys{ProgramID: programID, Market: marketID}

	var err error
	if keys.Authority, err = DeriveAuthority(programID); err != nil {
		return nil, err
	}
	if keys.Config, err = DeriveConfig(programID); err != nil {
		return nil, err
	}

	targets := map[Seed]*DerivedAddress{
		SeedPool:         &keys.Pool,
		SeedOpenOrders:   &keys.OpenOrders,
		SeedTargetOrders: &keys.TargetOrders,
		SeedLpMint:       &keys.LpMint,
		SeedCoinVault:    &keys.CoinVault,
		SeedPcVault:      &keys.PcVault,
	}
	for _, seed := range MarketSeeds {
		if *targets[seed], err = DeriveForMarket(programID, marketID, seed); err != nil {
			return nil, err
		}
	}

	return keys, nil
}

// EnvLines renders the keys the way the setup scripts print them, ready to be
// pasted into an env file.
func (k *PoolKeys) EnvLines() []string {
	return []string{
		"AMM_POOL=" + k.Pool.Address.String(),
		"AMM_AUTHORITY=" + k.Authority.Address.String(),
		"AMM_OPEN_ORDERS=" + k.OpenOrders.Address.String(),
		"AMM_LP_MINT=" + k.LpMint.Address.String(),
		"AMM_COIN_VAULT=" + k.CoinVault.Address.String(),
		"AMM_PC_VAULT=" + k.PcVault.Address.String(),
		"AMM_TARGET_ORDERS=" + k.TargetOrders.Address.String(),
		"AMM_CONFIG=" + k.Config.Address.String(),
	}
}

// Addresses returns the derived addresses keyed by role, for journaling.
func (k *PoolKeys) Addresses() map[string]string {
	return map[string]string{
		"pool":          k.Pool.Address.String(),
		"authority":     k.Authority.Address.String(),
		"open_orders":   k.OpenOrders.Address.String(),
		"target_orders": k.TargetOrders.Address.String(),
		"lp_mint":       k.LpMint.Address.String(),
		"coin_vault":    k.CoinVault.Address.String(),
		"pc_vault":      k.PcVault.Address.String(),
		"config":        k.Config.Address.String(),
	}
}
