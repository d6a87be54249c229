package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Environment variable names.
const (
	EnvRPCURL           = "SOLANA_RPC_URL"
	EnvNetwork          = "SOLANA_NETWORK"
	EnvTimeout          = "SOLANA_TIMEOUT"
	EnvCommitment       = "SOLANA_COMMITMENT"
	EnvSkipPreflight    = "SKIP_PREFLIGHT"
	EnvComputeUnitLimit = "COMPUTE_UNIT_LIMIT"
	EnvComputeUnitPrice = "COMPUTE_UNIT_PRICE"
	EnvWalletPath       = "WALLET_PATH"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvJournalDriver    = "JOURNAL_DRIVER"
	EnvJournalDSN       = "JOURNAL_DSN"
	EnvJournalDatabase  = "JOURNAL_DATABASE"
	EnvServerAddr       = "SERVER_ADDR"
)

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Config holds the ambient configuration shared by every command
type Config struct {
	Solana  SolanaConfig  `mapstructure:"solana" yaml:"solana" json:"solana"`
	Wallet  WalletConfig  `mapstructure:"wallet" yaml:"wallet" json:"wallet"`
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal" json:"journal"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`

	env *Env
}

// SolanaConfig holds Solana-specific configuration
type SolanaConfig struct {
	RPC              string `mapstructure:"rpc" yaml:"rpc" json:"rpc"`
	Network          string `mapstructure:"network" yaml:"network" json:"network"`
	Timeout          int    `mapstructure:"timeout" yaml:"timeout" json:"timeout"` // in seconds
	Commitment       string `mapstructure:"commitment" yaml:"commitment" json:"commitment"`
	SkipPreflight    bool   `mapstructure:"skip_preflight" yaml:"skip_preflight" json:"skip_preflight"`
	ComputeUnitLimit uint32 `mapstructure:"compute_unit_limit" yaml:"compute_unit_limit" json:"compute_unit_limit"`
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price" yaml:"compute_unit_price" json:"compute_unit_price"` // micro-lamports
}

// WalletConfig points at the payer keypair file
type WalletConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"` // json or text
}

// JournalConfig selects the submission journal backend
type JournalConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver" json:"driver"` // none, memory, postgres, mysql, mongodb
	DSN      string `mapstructure:"dsn" yaml:"dsn" json:"-"`
	Database string `mapstructure:"database" yaml:"database" json:"database"`
}

// ServerConfig holds the HTTP API listen address
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// Options controls where Load reads from.
type Options struct {
	// EnvFile is an env-format file; empty means DefaultEnvFile, read only if present.
	EnvFile string
	// Viper may carry bound CLI flags. Nil means a fresh instance.
	Viper *viper.Viper
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:           "https://api.devnet.solana.com",
			Network:       "devnet",
			Timeout:       60,
			Commitment:    "confirmed",
			SkipPreflight: true,
		},
		Wallet: WalletConfig{
			Path: "~/.config/solana/id.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Journal: JournalConfig{
			Driver:   "none",
			Database: "amm",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load resolves configuration from, in increasing precedence, the env file,
// the process environment and any flags bound on opts.Viper.
func Load(opts Options) (*Config, error) {
	v := opts.Viper
	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()

	path := opts.EnvFile
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return FromEnv(NewEnv(v))
}

// FromEnv resolves the ambient configuration from env.
func FromEnv(env *Env) (*Config, error) {
	cfg := DefaultConfig()
	cfg.env = env

	cfg.Solana.Network = env.Get(EnvNetwork, "")
	cfg.Solana.RPC = env.Get(EnvRPCURL, "")
	if cfg.Solana.RPC == "" && cfg.Solana.Network == "" {
		cfg.Solana.RPC = DefaultConfig().Solana.RPC
	}
	if cfg.Solana.Network == "" {
		cfg.Solana.Network = DefaultConfig().Solana.Network
	}

	var err error
	if cfg.Solana.Timeout, err = env.Int(EnvTimeout, cfg.Solana.Timeout); err != nil {
		return nil, err
	}
	cfg.Solana.Commitment = env.Get(EnvCommitment, cfg.Solana.Commitment)
	if cfg.Solana.SkipPreflight, err = env.Bool(EnvSkipPreflight, cfg.Solana.SkipPreflight); err != nil {
		return nil, err
	}
	limit, err := env.Uint64(EnvComputeUnitLimit, 0)
	if err != nil {
		return nil, err
	}
	if limit > 1_400_000 {
		return nil, InvalidValue(EnvComputeUnitLimit, "exceeds 1400000")
	}
	cfg.Solana.ComputeUnitLimit = uint32(limit)
	if cfg.Solana.ComputeUnitPrice, err = env.Uint64(EnvComputeUnitPrice, 0); err != nil {
		return nil, err
	}

	cfg.Wallet.Path = env.Get(EnvWalletPath, cfg.Wallet.Path)
	cfg.Log.Level = env.Get(EnvLogLevel, cfg.Log.Level)
	cfg.Log.Format = env.Get(EnvLogFormat, cfg.Log.Format)
	cfg.Journal.Driver = env.Get(EnvJournalDriver, cfg.Journal.Driver)
	cfg.Journal.DSN = env.Get(EnvJournalDSN, cfg.Journal.DSN)
	cfg.Journal.Database = env.Get(EnvJournalDatabase, cfg.Journal.Database)
	cfg.Server.Addr = env.Get(EnvServerAddr, cfg.Server.Addr)

	return cfg, nil
}

// Env returns the source the configuration was resolved from.
func (c *Config) Env() *Env {
	if c.env == nil {
		c.env = NewEnv(nil)
	}
	return c.env
}

// TimeoutDuration returns the confirmation deadline.
func (c *SolanaConfig) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// GetRPCEndpoint returns the RPC endpoint for the configured network
func (c *SolanaConfig) GetRPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}

	switch c.Network {
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}
