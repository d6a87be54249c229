package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-amm/internal/amm"
	amerrors "github.com/lugondev/go-amm/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "-o", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info VersionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if info.Version != Version {
		t.Errorf("version = %q, want %q", info.Version, Version)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := execute(t, "version", "-o", "xml")
	if amerrors.Code(err) != amerrors.ErrCodeInvalidConfig {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestPDAJSON(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	market := solana.NewWallet().PublicKey()

	out, err := execute(t, "pda", "-o", "json", "--program", programID.String(), "--market", market.String())
	if err != nil {
		t.Fatalf("pda: %v", err)
	}

	var got amm.PoolKeys
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	want, err := amm.DerivePoolKeys(programID, market)
	if err != nil {
		t.Fatalf("DerivePoolKeys: %v", err)
	}
	if got.Pool.Address != want.Pool.Address {
		t.Errorf("pool = %s, want %s", got.Pool.Address, want.Pool.Address)
	}
	if got.Authority.Bump != want.Authority.Bump {
		t.Errorf("authority bump = %d, want %d", got.Authority.Bump, want.Authority.Bump)
	}
	if got.LpMint.Address != want.LpMint.Address {
		t.Errorf("lp mint = %s, want %s", got.LpMint.Address, want.LpMint.Address)
	}
}

func TestPDAText(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	market := solana.NewWallet().PublicKey()

	out, err := execute(t, "pda", "-o", "text", "--program", programID.String(), "--market", market.String())
	if err != nil {
		t.Fatalf("pda: %v", err)
	}
	keys, _ := amm.DerivePoolKeys(programID, market)
	for _, line := range keys.EnvLines() {
		if !bytes.Contains([]byte(out), []byte(line)) {
			t.Errorf("output missing %q", line)
		}
	}
}

func TestDecodeSwap(t *testing.T) {
	out, err := execute(t, "decode", "-o", "json", "09e803000000000000", "0100000000000000")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var got struct {
		Name   string               `json:"name"`
		Tag    uint8                `json:"tag"`
		Params amm.SwapBaseInParams `json:"params"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got.Name != amm.NameSwapBaseIn || got.Tag != amm.TagSwapBaseIn {
		t.Errorf("got %s/%d", got.Name, got.Tag)
	}
	if got.Params.AmountIn != 1000 || got.Params.MinimumAmountOut != 1 {
		t.Errorf("params = %+v", got.Params)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := execute(t, "decode", "-o", "text", "--encoding", "hex", "ff00")
	if amerrors.Code(err) != amerrors.ErrCodeDecodeFailed {
		t.Fatalf("expected DECODE_FAILED, got %v", err)
	}
}
