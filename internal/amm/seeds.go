// Package amm encodes calls to a deployed constant-product AMM program.
//
// It derives the program's well-known addresses from fixed seed strings,
// packs instruction payloads into the program's binary layout and assembles
// the positional account lists each instruction expects. Everything here is
// pure: no I/O, no shared state.
package amm

// Seed names a derived-address role.
type Seed string

// Seeds used by the AMM program. They are part of the on-chain contract and
// must never change.
const (
	SeedAuthority    Seed = "amm authority"
	SeedPool         Seed = "amm_associated_seed"
	SeedTargetOrders Seed = "target_associated_seed"
	SeedOpenOrders   Seed = "open_order_associated_seed"
	SeedCoinVault    Seed = "coin_vault_associated_seed"
	SeedPcVault      Seed = "pc_vault_associated_seed"
	SeedLpMint       Seed = "lp_mint_associated_seed"
	SeedConfig       Seed = "amm_config_account_seed"
)

// MarketSeeds lists the roles derived per market, in a stable order.
var MarketSeeds = []Seed{
	SeedPool,
	SeedOpenOrders,
	SeedTargetOrders,
	SeedLpMint,
	SeedCoinVault,
	SeedPcVault,
}

func (s Seed) String() string {
	return string(s)
}

// Bytes returns the UTF-8 bytes fed to the derivation.
func (s Seed) Bytes() []byte {
	return []byte(s)
}
