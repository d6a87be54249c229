package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	amerrors "github.com/lugondev/go-amm/internal/errors"
)

const (
	testAMM    = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	testMarket = "9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT"
	testKey    = "HWHvQhFmJB3NUcu1aihKmrKegfVxBEHzwVX6yZCKEsi1"
)

func newTestEnv(t *testing.T, vars map[string]string) *Env {
	t.Helper()
	v := viper.New()
	for k, val := range vars {
		v.Set(k, val)
	}
	return NewEnv(v)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Solana.RPC != "https://api.devnet.solana.com" {
		t.Errorf("Expected devnet RPC, got %s", cfg.Solana.RPC)
	}
	if cfg.Solana.Timeout != 60 {
		t.Errorf("Expected timeout 60, got %d", cfg.Solana.Timeout)
	}
	if !cfg.Solana.SkipPreflight {
		t.Error("Expected skip preflight by default")
	}
	if cfg.Wallet.Path != "~/.config/solana/id.json" {
		t.Errorf("Unexpected wallet path %s", cfg.Wallet.Path)
	}
	if cfg.Journal.Driver != "none" {
		t.Errorf("Expected journal driver none, got %s", cfg.Journal.Driver)
	}
}

func TestGetRPCEndpoint(t *testing.T) {
	tests := []struct {
		network  string
		rpc      string
		expected string
	}{
		{"mainnet", "", "https://api.mainnet-beta.solana.com"},
		{"mainnet-beta", "", "https://api.mainnet-beta.solana.com"},
		{"testnet", "", "https://api.testnet.solana.com"},
		{"localnet", "", "http://localhost:8899"},
		{"devnet", "", "https://api.devnet.solana.com"},
		{"devnet", "http://custom:8899", "http://custom:8899"},
	}

	for _, tt := range tests {
		c := SolanaConfig{Network: tt.network, RPC: tt.rpc}
		if got := c.GetRPCEndpoint(); got != tt.expected {
			t.Errorf("network %s: expected %s, got %s", tt.network, tt.expected, got)
		}
	}
}

func TestLoadFromProcessEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvRPCURL, "http://localhost:8899")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvSkipPreflight, "false")
	t.Setenv(EnvComputeUnitPrice, "1000")
	t.Setenv(EnvJournalDriver, "memory")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Solana.GetRPCEndpoint() != "http://localhost:8899" {
		t.Errorf("Unexpected RPC %s", cfg.Solana.GetRPCEndpoint())
	}
	if cfg.Solana.Timeout != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.Solana.Timeout)
	}
	if cfg.Solana.SkipPreflight {
		t.Error("Expected skip preflight disabled")
	}
	if cfg.Solana.ComputeUnitPrice != 1000 {
		t.Errorf("Expected unit price 1000, got %d", cfg.Solana.ComputeUnitPrice)
	}
	if cfg.Journal.Driver != "memory" {
		t.Errorf("Expected memory journal, got %s", cfg.Journal.Driver)
	}
}

func TestLoadNetworkWithoutRPC(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvNetwork, "testnet")

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Solana.GetRPCEndpoint(); got != "https://api.testnet.solana.com" {
		t.Errorf("Expected testnet endpoint, got %s", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev.env")
	content := "RAYDIUM_AMM_PROGRAM_ID=" + testAMM + "\nSWAP_AMOUNT_IN=250\nSOLANA_TIMEOUT=10\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTimeout, "20")

	cfg, err := Load(Options{EnvFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Solana.Timeout != 20 {
		t.Errorf("Expected process env to win, got timeout %d", cfg.Solana.Timeout)
	}

	programs, err := cfg.Env().Programs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if programs.AMM.String() != testAMM {
		t.Errorf("Expected %s, got %s", testAMM, programs.AMM)
	}
	if n, _ := cfg.Env().Uint64(EnvSwapAmountIn, 0); n != 250 {
		t.Errorf("Expected 250, got %d", n)
	}
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	if err == nil {
		t.Error("Expected error for missing explicit env file")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvTimeout, "soon")

	_, err := Load(Options{})
	if !amerrors.Is(err, amerrors.ErrInvalidConfig) {
		t.Errorf("Expected InvalidConfig, got %v", err)
	}
}

func TestEnvAccessors(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"NAME":  "value",
		"BLANK": "   ",
		"KEY":   testKey,
		"BAD":   "not-a-key",
		"NUM":   "42",
		"NEG":   "-1",
		"FLAG":  "true",
	})

	if got := env.Get("NAME", "x"); got != "value" {
		t.Errorf("Expected value, got %s", got)
	}
	if got := env.Get("BLANK", "fallback"); got != "fallback" {
		t.Errorf("Expected blank to fall back, got %q", got)
	}

	if _, err := env.Require("ABSENT"); !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}
	if _, err := env.RequirePublicKey("ABSENT"); !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}

	pk, err := env.RequirePublicKey("KEY")
	if err != nil || pk.String() != testKey {
		t.Errorf("Expected %s, got %s (%v)", testKey, pk, err)
	}
	if _, err := env.PublicKey("BAD", solana.PublicKey{}); !amerrors.Is(err, amerrors.ErrInvalidConfig) {
		t.Errorf("Expected InvalidConfig, got %v", err)
	}
	fallback, _ := env.PublicKey("ABSENT", solana.SystemProgramID)
	if !fallback.Equals(solana.SystemProgramID) {
		t.Errorf("Expected fallback key, got %s", fallback)
	}

	if n, _ := env.Uint64("NUM", 0); n != 42 {
		t.Errorf("Expected 42, got %d", n)
	}
	if _, err := env.Uint64("NEG", 0); !amerrors.Is(err, amerrors.ErrInvalidConfig) {
		t.Errorf("Expected InvalidConfig for negative, got %v", err)
	}
	if n, _ := env.OptionalUint64("ABSENT"); n != nil {
		t.Errorf("Expected nil, got %d", *n)
	}
	if b, _ := env.Bool("FLAG", false); !b {
		t.Error("Expected true")
	}
	if _, err := env.Bool("NAME", false); !amerrors.Is(err, amerrors.ErrInvalidConfig) {
		t.Errorf("Expected InvalidConfig, got %v", err)
	}
}

func TestProgramsDefaults(t *testing.T) {
	env := newTestEnv(t, map[string]string{EnvAMMProgramID: testAMM})

	p, err := env.Programs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.OpenBook.Equals(DefaultOpenBookProgramID) {
		t.Errorf("Expected default OpenBook program, got %s", p.OpenBook)
	}
	if !p.CreateFeeDestination.Equals(DefaultCreatePoolFeeDest) {
		t.Errorf("Expected default fee destination, got %s", p.CreateFeeDestination)
	}

	_, err = newTestEnv(t, nil).Programs()
	if !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}
}

func poolVars() map[string]string {
	return map[string]string{
		EnvAMMProgramID:     testAMM,
		EnvMarketAddress:    testMarket,
		EnvMarketEventQueue: testKey,
		EnvCoinMint:         testKey,
		EnvPcMint:           testKey,
		EnvUserCoinAccount:  testKey,
		EnvUserPcAccount:    testKey,
	}
}

func TestInitPoolParams(t *testing.T) {
	p, err := newTestEnv(t, poolVars()).InitPoolParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.InitPc != 1_000_000 || p.InitCoin != 1_000_000 {
		t.Errorf("Expected default amounts, got %d/%d", p.InitPc, p.InitCoin)
	}
	if p.OpenTime != 0 {
		t.Errorf("Expected unset open time, got %d", p.OpenTime)
	}
	if !p.TokenProgram.Equals(solana.TokenProgramID) {
		t.Errorf("Expected classic token program, got %s", p.TokenProgram)
	}

	vars := poolVars()
	delete(vars, EnvCoinMint)
	_, err = newTestEnv(t, vars).InitPoolParams()
	if !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}
}

func TestDepositParamsOtherAmountMin(t *testing.T) {
	tests := []struct {
		name    string
		extra   map[string]string
		wantMin *uint64
		wantErr error
	}{
		{name: "no toggle no value"},
		{name: "value without toggle", extra: map[string]string{EnvDepositOtherAmountMin: "5"}, wantErr: amerrors.ErrInvalidConfig},
		{name: "value with toggle false", extra: map[string]string{EnvDepositWithOtherMin: "false", EnvDepositOtherAmountMin: "5"}, wantErr: amerrors.ErrInvalidConfig},
		{name: "toggle on", extra: map[string]string{EnvDepositWithOtherMin: "true", EnvDepositOtherAmountMin: "5"}, wantMin: ptr(5)},
		{name: "toggle on zero", extra: map[string]string{EnvDepositWithOtherMin: "true", EnvDepositOtherAmountMin: "0"}, wantMin: ptr(0)},
		{name: "toggle on no value", extra: map[string]string{EnvDepositWithOtherMin: "true"}, wantErr: amerrors.ErrInvalidConfig},
		{name: "bad base side", extra: map[string]string{EnvDepositBaseSide: "2"}, wantErr: amerrors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := poolVars()
			for k, v := range tt.extra {
				vars[k] = v
			}
			p, err := newTestEnv(t, vars).DepositParams()
			if tt.wantErr != nil {
				if !amerrors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MaxCoin != 1000 || p.MaxPc != 1000 || p.BaseSide != 0 {
				t.Errorf("Unexpected defaults %+v", p)
			}
			switch {
			case tt.wantMin == nil && p.OtherAmountMin != nil:
				t.Errorf("Expected no other amount min, got %d", *p.OtherAmountMin)
			case tt.wantMin != nil && (p.OtherAmountMin == nil || *p.OtherAmountMin != *tt.wantMin):
				t.Errorf("Expected other amount min %d, got %v", *tt.wantMin, p.OtherAmountMin)
			}
		})
	}
}

func TestSwapParams(t *testing.T) {
	vars := map[string]string{
		EnvAMMProgramID:      testAMM,
		EnvMarketAddress:     testMarket,
		EnvMarketEventQueue:  testKey,
		EnvMarketBids:        testKey,
		EnvMarketAsks:        testKey,
		EnvMarketCoinVault:   testKey,
		EnvMarketPcVault:     testKey,
		EnvMarketVaultSigner: testKey,
		EnvSwapSourceATA:     testKey,
		EnvSwapDestATA:       testKey,
	}
	p, err := newTestEnv(t, vars).SwapParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AmountIn != 100 || p.MinimumOut != 1 {
		t.Errorf("Expected 100/1, got %d/%d", p.AmountIn, p.MinimumOut)
	}
	if p.WithTargetOrders {
		t.Error("Expected 17-account form by default")
	}

	delete(vars, EnvMarketBids)
	_, err = newTestEnv(t, vars).SwapParams()
	if !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}
	if details := err.(*amerrors.Error).Details; details["name"] != EnvMarketBids {
		t.Errorf("Expected missing %s, got %v", EnvMarketBids, details["name"])
	}
}

func TestTokenParams(t *testing.T) {
	p, err := newTestEnv(t, nil).TokenParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.UseToken2022 || p.Decimals != 6 || p.MintAmount != 1_000_000_000 {
		t.Errorf("Unexpected defaults %+v", p)
	}
	if !p.TransferHookProgram.IsZero() {
		t.Error("Expected no transfer hook")
	}

	_, err = newTestEnv(t, map[string]string{
		EnvUseToken2022:          "false",
		EnvTransferHookProgramID: testKey,
	}).TokenParams()
	if !amerrors.Is(err, amerrors.ErrInvalidConfig) {
		t.Errorf("Expected InvalidConfig, got %v", err)
	}
}

func TestMarketParams(t *testing.T) {
	_, err := newTestEnv(t, nil).MarketParams()
	if !amerrors.Is(err, amerrors.ErrMissingConfig) {
		t.Errorf("Expected MissingConfig, got %v", err)
	}

	p, err := newTestEnv(t, map[string]string{EnvCoinMintSPL: testKey, EnvPcMintSPL: testMarket}).MarketParams()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.OpenBook.Equals(DefaultOpenBookProgramID) {
		t.Errorf("Expected default OpenBook program, got %s", p.OpenBook)
	}
}

func ptr(v uint64) *uint64 { return &v }
