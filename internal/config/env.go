package config

import (
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	amerrors "github.com/lugondev/go-amm/internal/errors"
)

// Env is a flat name to string view over viper. Empty values count as unset.
type Env struct {
	v *viper.Viper
}

// NewEnv wraps v. A nil v gets a fresh instance reading the process environment.
func NewEnv(v *viper.Viper) *Env {
	if v == nil {
		v = viper.New()
		v.AutomaticEnv()
	}
	return &Env{v: v}
}

// Viper returns the underlying instance so callers can bind flags.
func (e *Env) Viper() *viper.Viper {
	return e.v
}

func (e *Env) lookup(name string) (string, bool) {
	s := strings.TrimSpace(e.v.GetString(name))
	return s, s != ""
}

// Get returns the value of name, or fallback when unset.
func (e *Env) Get(name, fallback string) string {
	if s, ok := e.lookup(name); ok {
		return s
	}
	return fallback
}

// Require returns the value of name or a MISSING_CONFIG error.
func (e *Env) Require(name string) (string, error) {
	s, ok := e.lookup(name)
	if !ok {
		return "", amerrors.MissingConfig(name)
	}
	return s, nil
}

// PublicKey parses name as a base58 public key, using fallback when unset.
func (e *Env) PublicKey(name string, fallback solana.PublicKey) (solana.PublicKey, error) {
	s, ok := e.lookup(name)
	if !ok {
		return fallback, nil
	}
	return parsePublicKey(name, s)
}

// RequirePublicKey is PublicKey without a fallback.
func (e *Env) RequirePublicKey(name string) (solana.PublicKey, error) {
	s, err := e.Require(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return parsePublicKey(name, s)
}

// OptionalPublicKey returns the zero key when name is unset.
func (e *Env) OptionalPublicKey(name string) (solana.PublicKey, error) {
	return e.PublicKey(name, solana.PublicKey{})
}

func parsePublicKey(name, s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, amerrors.InvalidConfig(name, err)
	}
	return pk, nil
}

// Uint64 parses name as an unsigned decimal integer.
func (e *Env) Uint64(name string, fallback uint64) (uint64, error) {
	s, ok := e.lookup(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, amerrors.InvalidConfig(name, err)
	}
	return n, nil
}

// OptionalUint64 returns nil when name is unset.
func (e *Env) OptionalUint64(name string) (*uint64, error) {
	if _, ok := e.lookup(name); !ok {
		return nil, nil
	}
	n, err := e.Uint64(name, 0)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Int parses name as a signed integer.
func (e *Env) Int(name string, fallback int) (int, error) {
	s, ok := e.lookup(name)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, amerrors.InvalidConfig(name, err)
	}
	return n, nil
}

// Bool parses name with strconv.ParseBool semantics.
func (e *Env) Bool(name string, fallback bool) (bool, error) {
	s, ok := e.lookup(name)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, amerrors.InvalidConfig(name, err)
	}
	return b, nil
}
