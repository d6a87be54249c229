package config

import (
	"github.com/gagliardetto/solana-go"

	amerrors "github.com/lugondev/go-amm/internal/errors"
)

// Per-operation environment names.
const (
	EnvAMMProgramID          = "RAYDIUM_AMM_PROGRAM_ID"
	EnvOpenBookProgramID     = "OPENBOOK_PROGRAM_ID"
	EnvCreatePoolFeeDest     = "CREATE_POOL_FEE_DEST"
	EnvMarketAddress         = "MARKET_ADDRESS"
	EnvMarketEventQueue      = "MARKET_EVENT_Q"
	EnvMarketBids            = "MARKET_BIDS"
	EnvMarketAsks            = "MARKET_ASKS"
	EnvMarketCoinVault       = "MARKET_COIN_VAULT"
	EnvMarketPcVault         = "MARKET_PC_VAULT"
	EnvMarketVaultSigner     = "MARKET_VAULT_SIGNER"
	EnvCoinMint              = "COIN_MINT"
	EnvPcMint                = "PC_MINT"
	EnvCoinTokenProgram      = "COIN_TOKEN_PROGRAM"
	EnvUserCoinAccount       = "USER_COIN_ACCOUNT"
	EnvUserPcAccount         = "USER_PC_ACCOUNT"
	EnvInitPc                = "INIT_PC"
	EnvInitCoin              = "INIT_COIN"
	EnvOpenTime              = "OPEN_TIME"
	EnvDepositMaxCoin        = "DEPOSIT_MAX_COIN"
	EnvDepositMaxPc          = "DEPOSIT_MAX_PC"
	EnvDepositBaseSide       = "DEPOSIT_BASE_SIDE"
	EnvDepositOtherAmountMin = "DEPOSIT_OTHER_AMOUNT_MIN"
	EnvDepositWithOtherMin   = "DEPOSIT_WITH_OTHER_AMOUNT_MIN"
	EnvSwapAmountIn          = "SWAP_AMOUNT_IN"
	EnvSwapMinimumOut        = "SWAP_MINIMUM_OUT"
	EnvSwapSourceATA         = "SWAP_SOURCE_ATA"
	EnvSwapDestATA           = "SWAP_DEST_ATA"
	EnvSwapWithTargetOrders  = "SWAP_WITH_TARGET_ORDERS"
	EnvTokenDecimals         = "TOKEN_DECIMALS"
	EnvTokenMintAmount       = "TOKEN_MINT_AMOUNT"
	EnvUseToken2022          = "USE_TOKEN_2022"
	EnvTransferHookProgramID = "TRANSFER_HOOK_PROGRAM_ID"
	EnvCoinMintSPL           = "COIN_MINT_SPL"
	EnvPcMintSPL             = "PC_MINT_SPL"
)

// Devnet defaults used by the setup scripts.
var (
	DefaultOpenBookProgramID = solana.MustPublicKeyFromBase58("EoTcMgcDRTJVZDMZWBoU6rhYHZfkNTVEAfz3uUJRcYGj")
	DefaultCreatePoolFeeDest = solana.MustPublicKeyFromBase58("9y8ENuuZ3b19quffx9hQvRVygG5ky6snHfRvGpuSfeJy")
)

// InvalidValue reports a present but unacceptable value.
func InvalidValue(name, reason string) error {
	return amerrors.InvalidConfig(name, amerrors.New(reason))
}

// Programs are the on-chain programs an operation talks to.
type Programs struct {
	AMM                  solana.PublicKey `json:"amm" yaml:"amm"`
	OpenBook             solana.PublicKey `json:"openbook" yaml:"openbook"`
	CreateFeeDestination solana.PublicKey `json:"create_fee_destination" yaml:"create_fee_destination"`
}

// Programs resolves program ids. The AMM program id is required.
func (e *Env) Programs() (Programs, error) {
	var (
		p   Programs
		err error
	)
	if p.AMM, err = e.RequirePublicKey(EnvAMMProgramID); err != nil {
		return p, err
	}
	if p.OpenBook, err = e.PublicKey(EnvOpenBookProgramID, DefaultOpenBookProgramID); err != nil {
		return p, err
	}
	if p.CreateFeeDestination, err = e.PublicKey(EnvCreatePoolFeeDest, DefaultCreatePoolFeeDest); err != nil {
		return p, err
	}
	return p, nil
}

// MarketAccounts are the order-book accounts a pool trades against.
type MarketAccounts struct {
	Market      solana.PublicKey `json:"market" yaml:"market"`
	EventQueue  solana.PublicKey `json:"event_queue" yaml:"event_queue"`
	Bids        solana.PublicKey `json:"bids" yaml:"bids"`
	Asks        solana.PublicKey `json:"asks" yaml:"asks"`
	CoinVault   solana.PublicKey `json:"coin_vault" yaml:"coin_vault"`
	PcVault     solana.PublicKey `json:"pc_vault" yaml:"pc_vault"`
	VaultSigner solana.PublicKey `json:"vault_signer" yaml:"vault_signer"`
}

// MarketAccounts resolves all seven market accounts, each required.
func (e *Env) MarketAccounts() (MarketAccounts, error) {
	var m MarketAccounts
	fields := []struct {
		name string
		dst  *solana.PublicKey
	}{
		{EnvMarketAddress, &m.Market},
		{EnvMarketEventQueue, &m.EventQueue},
		{EnvMarketBids, &m.Bids},
		{EnvMarketAsks, &m.Asks},
		{EnvMarketCoinVault, &m.CoinVault},
		{EnvMarketPcVault, &m.PcVault},
		{EnvMarketVaultSigner, &m.VaultSigner},
	}
	for _, f := range fields {
		pk, err := e.RequirePublicKey(f.name)
		if err != nil {
			return m, err
		}
		*f.dst = pk
	}
	return m, nil
}

// InitPoolParams configure pool initialization.
type InitPoolParams struct {
	Programs     Programs         `json:"programs" yaml:"programs"`
	Market       solana.PublicKey `json:"market" yaml:"market"`
	CoinMint     solana.PublicKey `json:"coin_mint" yaml:"coin_mint"`
	PcMint       solana.PublicKey `json:"pc_mint" yaml:"pc_mint"`
	TokenProgram solana.PublicKey `json:"token_program" yaml:"token_program"`
	UserCoin     solana.PublicKey `json:"user_coin" yaml:"user_coin"`
	UserPc       solana.PublicKey `json:"user_pc" yaml:"user_pc"`
	InitPc       uint64           `json:"init_pc" yaml:"init_pc"`
	InitCoin     uint64           `json:"init_coin" yaml:"init_coin"`
	// OpenTime of zero means now minus 30 seconds at submission.
	OpenTime uint64 `json:"open_time" yaml:"open_time"`
}

// InitPoolParams resolves pool initialization settings.
func (e *Env) InitPoolParams() (*InitPoolParams, error) {
	p := &InitPoolParams{}
	var err error
	if p.Programs, err = e.Programs(); err != nil {
		return nil, err
	}
	if p.Market, err = e.RequirePublicKey(EnvMarketAddress); err != nil {
		return nil, err
	}
	if p.CoinMint, err = e.RequirePublicKey(EnvCoinMint); err != nil {
		return nil, err
	}
	if p.PcMint, err = e.RequirePublicKey(EnvPcMint); err != nil {
		return nil, err
	}
	if p.TokenProgram, err = e.PublicKey(EnvCoinTokenProgram, solana.TokenProgramID); err != nil {
		return nil, err
	}
	if p.UserCoin, err = e.RequirePublicKey(EnvUserCoinAccount); err != nil {
		return nil, err
	}
	if p.UserPc, err = e.RequirePublicKey(EnvUserPcAccount); err != nil {
		return nil, err
	}
	if p.InitPc, err = e.Uint64(EnvInitPc, 1_000_000); err != nil {
		return nil, err
	}
	if p.InitCoin, err = e.Uint64(EnvInitCoin, 1_000_000); err != nil {
		return nil, err
	}
	if p.OpenTime, err = e.Uint64(EnvOpenTime, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// DepositParams configure a liquidity deposit.
type DepositParams struct {
	Programs       Programs         `json:"programs" yaml:"programs"`
	Market         solana.PublicKey `json:"market" yaml:"market"`
	EventQueue     solana.PublicKey `json:"event_queue" yaml:"event_queue"`
	TokenProgram   solana.PublicKey `json:"token_program" yaml:"token_program"`
	UserCoin       solana.PublicKey `json:"user_coin" yaml:"user_coin"`
	UserPc         solana.PublicKey `json:"user_pc" yaml:"user_pc"`
	MaxCoin        uint64           `json:"max_coin" yaml:"max_coin"`
	MaxPc          uint64           `json:"max_pc" yaml:"max_pc"`
	BaseSide       uint64           `json:"base_side" yaml:"base_side"`
	OtherAmountMin *uint64          `json:"other_amount_min,omitempty" yaml:"other_amount_min,omitempty"`
}

// DepositParams resolves deposit settings. The trailing other-amount minimum
// is sent only when DEPOSIT_WITH_OTHER_AMOUNT_MIN is true, and then a value is
// mandatory. A value without the toggle is rejected rather than ignored.
func (e *Env) DepositParams() (*DepositParams, error) {
	p := &DepositParams{}
	var err error
	if p.Programs, err = e.Programs(); err != nil {
		return nil, err
	}
	if p.Market, err = e.RequirePublicKey(EnvMarketAddress); err != nil {
		return nil, err
	}
	if p.EventQueue, err = e.RequirePublicKey(EnvMarketEventQueue); err != nil {
		return nil, err
	}
	if p.TokenProgram, err = e.PublicKey(EnvCoinTokenProgram, solana.TokenProgramID); err != nil {
		return nil, err
	}
	if p.UserCoin, err = e.RequirePublicKey(EnvUserCoinAccount); err != nil {
		return nil, err
	}
	if p.UserPc, err = e.RequirePublicKey(EnvUserPcAccount); err != nil {
		return nil, err
	}
	if p.MaxCoin, err = e.Uint64(EnvDepositMaxCoin, 1000); err != nil {
		return nil, err
	}
	if p.MaxPc, err = e.Uint64(EnvDepositMaxPc, 1000); err != nil {
		return nil, err
	}
	if p.BaseSide, err = e.Uint64(EnvDepositBaseSide, 0); err != nil {
		return nil, err
	}
	if p.BaseSide > 1 {
		return nil, InvalidValue(EnvDepositBaseSide, "must be 0 (coin) or 1 (pc)")
	}

	withMin, err := e.Bool(EnvDepositWithOtherMin, false)
	if err != nil {
		return nil, err
	}
	otherMin, err := e.OptionalUint64(EnvDepositOtherAmountMin)
	if err != nil {
		return nil, err
	}
	switch {
	case withMin && otherMin == nil:
		return nil, InvalidValue(EnvDepositWithOtherMin, EnvDepositOtherAmountMin+" must be set")
	case !withMin && otherMin != nil:
		return nil, InvalidValue(EnvDepositWithOtherMin, "must be true when "+EnvDepositOtherAmountMin+" is set")
	}
	p.OtherAmountMin = otherMin
	return p, nil
}

// SwapParams configure an exact-input swap.
type SwapParams struct {
	Programs         Programs         `json:"programs" yaml:"programs"`
	Market           MarketAccounts   `json:"market" yaml:"market"`
	TokenProgram     solana.PublicKey `json:"token_program" yaml:"token_program"`
	Source           solana.PublicKey `json:"source" yaml:"source"`
	Destination      solana.PublicKey `json:"destination" yaml:"destination"`
	AmountIn         uint64           `json:"amount_in" yaml:"amount_in"`
	MinimumOut       uint64           `json:"minimum_out" yaml:"minimum_out"`
	WithTargetOrders bool             `json:"with_target_orders" yaml:"with_target_orders"`
}

// SwapParams resolves swap settings.
func (e *Env) SwapParams() (*SwapParams, error) {
	p := &SwapParams{}
	var err error
	if p.Programs, err = e.Programs(); err != nil {
		return nil, err
	}
	if p.Market, err = e.MarketAccounts(); err != nil {
		return nil, err
	}
	if p.TokenProgram, err = e.PublicKey(EnvCoinTokenProgram, solana.TokenProgramID); err != nil {
		return nil, err
	}
	if p.Source, err = e.RequirePublicKey(EnvSwapSourceATA); err != nil {
		return nil, err
	}
	if p.Destination, err = e.RequirePublicKey(EnvSwapDestATA); err != nil {
		return nil, err
	}
	if p.AmountIn, err = e.Uint64(EnvSwapAmountIn, 100); err != nil {
		return nil, err
	}
	if p.MinimumOut, err = e.Uint64(EnvSwapMinimumOut, 1); err != nil {
		return nil, err
	}
	if p.WithTargetOrders, err = e.Bool(EnvSwapWithTargetOrders, false); err != nil {
		return nil, err
	}
	return p, nil
}

// TokenParams configure test mint creation.
type TokenParams struct {
	UseToken2022 bool `json:"use_token_2022" yaml:"use_token_2022"`
	// TransferHookProgram is zero when no hook is installed.
	TransferHookProgram solana.PublicKey `json:"transfer_hook_program" yaml:"transfer_hook_program"`
	Decimals            uint8            `json:"decimals" yaml:"decimals"`
	MintAmount          uint64           `json:"mint_amount" yaml:"mint_amount"`
}

// TokenParams resolves mint creation settings.
func (e *Env) TokenParams() (*TokenParams, error) {
	p := &TokenParams{}
	var err error
	if p.UseToken2022, err = e.Bool(EnvUseToken2022, true); err != nil {
		return nil, err
	}
	if p.TransferHookProgram, err = e.OptionalPublicKey(EnvTransferHookProgramID); err != nil {
		return nil, err
	}
	if !p.TransferHookProgram.IsZero() && !p.UseToken2022 {
		return nil, InvalidValue(EnvTransferHookProgramID, "transfer hooks require "+EnvUseToken2022+"=true")
	}
	decimals, err := e.Uint64(EnvTokenDecimals, 6)
	if err != nil {
		return nil, err
	}
	if decimals > 18 {
		return nil, InvalidValue(EnvTokenDecimals, "must be at most 18")
	}
	p.Decimals = uint8(decimals)
	if p.MintAmount, err = e.Uint64(EnvTokenMintAmount, 1_000_000_000); err != nil {
		return nil, err
	}
	return p, nil
}

// MarketParams configure order-book market account creation.
type MarketParams struct {
	OpenBook solana.PublicKey `json:"openbook" yaml:"openbook"`
	CoinMint solana.PublicKey `json:"coin_mint" yaml:"coin_mint"`
	PcMint   solana.PublicKey `json:"pc_mint" yaml:"pc_mint"`
}

// MarketParams resolves market creation settings. The order book only accepts
// classic SPL mints, hence the *_SPL names.
func (e *Env) MarketParams() (*MarketParams, error) {
	p := &MarketParams{}
	var err error
	if p.OpenBook, err = e.PublicKey(EnvOpenBookProgramID, DefaultOpenBookProgramID); err != nil {
		return nil, err
	}
	if p.CoinMint, err = e.RequirePublicKey(EnvCoinMintSPL); err != nil {
		return nil, err
	}
	if p.PcMint, err = e.RequirePublicKey(EnvPcMintSPL); err != nil {
		return nil, err
	}
	return p, nil
}
