package cmd

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/amount"
	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/pool"
	solclient "github.com/lugondev/go-amm/internal/solana"
	"github.com/lugondev/go-amm/internal/txn"
)

// flagEnv ties a command flag to the environment name it overrides.
type flagEnv struct {
	flag string
	env  string
}

// applyFlags copies every changed flag over its environment name. Commands
// share names like MARKET_ADDRESS, so flags are applied at run time instead of
// bound once.
func applyFlags(cmd *cobra.Command, pairs ...flagEnv) {
	for _, p := range pairs {
		f := cmd.Flags().Lookup(p.flag)
		if f != nil && f.Changed {
			flags.Set(p.env, f.Value.String())
		}
	}
}

// applyUIAmounts converts changed UI-amount flags to base units using
// TOKEN_DECIMALS and stores them under their environment names.
func applyUIAmounts(cmd *cobra.Command, pairs ...flagEnv) error {
	var (
		decimals uint64
		resolved bool
	)
	for _, p := range pairs {
		f := cmd.Flags().Lookup(p.flag)
		if f == nil || !f.Changed {
			continue
		}
		if !resolved {
			var err error
			if decimals, err = app.env.Uint64(config.EnvTokenDecimals, 6); err != nil {
				return err
			}
			if decimals > 18 {
				return config.InvalidValue(config.EnvTokenDecimals, "must be at most 18")
			}
			resolved = true
		}
		units, err := amount.ToBaseUnits(f.Value.String(), uint8(decimals))
		if err != nil {
			return config.InvalidValue("--"+p.flag, err.Error())
		}
		flags.Set(p.env, strconv.FormatUint(units, 10))
	}
	return nil
}

func addDryRunFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "print the instruction without sending it")
}

// builtResult is the machine-readable outcome of a pool operation.
type builtResult struct {
	Operation string            `json:"operation" yaml:"operation"`
	Addresses map[string]string `json:"addresses" yaml:"addresses"`
	Data      string            `json:"data" yaml:"data"`
	Signature string            `json:"signature,omitempty" yaml:"signature,omitempty"`
	ElapsedMs int64             `json:"elapsed_ms,omitempty" yaml:"elapsed_ms,omitempty"`
}

// submitBuilt sends b signed by w, or only prints it with --dry-run.
func submitBuilt(cmd *cobra.Command, b *pool.Built, w *solclient.Wallet) error {
	res := builtResult{
		Operation: b.Operation,
		Addresses: b.Addresses(),
		Data:      base58.Encode(b.Data),
	}
	lines := b.EnvLines()

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		lines = append(lines, "DATA="+res.Data)
		return app.print(lines, res)
	}

	sub, err := app.Submitter(cmd.Context())
	if err != nil {
		return err
	}
	out, err := sub.Submit(cmd.Context(), &txn.Request{
		Operation:    b.Operation,
		Payer:        w.PrivateKey(),
		Instructions: []solana.Instruction{b.Instruction},
		ProgramID:    b.Instruction.ProgramID(),
		Addresses:    res.Addresses,
	})
	if err != nil {
		return err
	}
	res.Signature = out.Signature.String()
	res.ElapsedMs = out.Elapsed.Milliseconds()
	lines = append(lines, "", b.Operation+" confirmed: "+res.Signature)
	return app.print(lines, res)
}
