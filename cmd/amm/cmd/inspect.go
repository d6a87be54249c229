package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/amm"
	"github.com/lugondev/go-amm/internal/config"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/token"
	"github.com/lugondev/go-amm/pkg/decoder"
	solanalog "github.com/lugondev/go-amm/pkg/log"
)

type inspectResult struct {
	Signature    string                  `json:"signature" yaml:"signature"`
	Slot         uint64                  `json:"slot" yaml:"slot"`
	Error        string                  `json:"error,omitempty" yaml:"error,omitempty"`
	ComputeUnits uint64                  `json:"compute_units" yaml:"compute_units"`
	Instructions []decodedInstruction    `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Invocations  []*solanalog.Invocation `json:"invocations" yaml:"invocations"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <signature>",
	Short: "Show the decoded instructions and program logs of a transaction",
	Long: `Fetch a confirmed transaction, decode every top-level instruction sent to
the AMM program or a token program and fold the program logs into an
invocation tree with compute units per program.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd, flagEnv{"program", config.EnvAMMProgramID})

		sig, err := solana.SignatureFromBase58(args[0])
		if err != nil {
			return amerrors.DecodeFailed("signature", err)
		}
		programID, err := app.env.OptionalPublicKey(config.EnvAMMProgramID)
		if err != nil {
			return err
		}

		result, err := app.Client().GetTransaction(cmd.Context(), sig)
		if err != nil {
			return err
		}

		res := inspectResult{Signature: sig.String(), Slot: result.Slot}
		if result.Meta != nil {
			if result.Meta.Err != nil {
				res.Error = fmt.Sprintf("%v", result.Meta.Err)
			}
			res.Invocations = solanalog.Summarize(result.Meta.LogMessages)
			res.ComputeUnits = solanalog.TotalComputeUnits(res.Invocations)
		}

		if result.Transaction != nil {
			tx, err := result.Transaction.GetTransaction()
			if err != nil {
				return amerrors.DecodeFailed("transaction", err)
			}
			registry := decoder.NewRegistry()
			token.RegisterDecoders(registry)
			if !programID.IsZero() {
				amm.RegisterDecoders(registry, programID)
			}

			keys := tx.Message.AccountKeys
			for i, ix := range tx.Message.Instructions {
				if int(ix.ProgramIDIndex) >= len(keys) {
					continue
				}
				program := keys[ix.ProgramIDIndex]
				if !registry.HasProgram(program) {
					continue
				}
				decoded, err := registry.Decode(ix.Data, &program)
				if err != nil {
					app.logger.Debug("instruction not decoded", "index", i, "program", program, "error", err)
					continue
				}
				res.Instructions = append(res.Instructions, decodedInstruction{
					Program: program.String(),
					Name:    decoded.Name,
					Tag:     decoded.Tag,
					Params:  decoded.Data,
				})
			}
		}

		return app.print(inspectLines(res), res)
	},
}

func inspectLines(res inspectResult) []string {
	status := "success"
	if res.Error != "" {
		status = "failed: " + res.Error
	}
	lines := []string{
		"Signature:     " + res.Signature,
		fmt.Sprintf("Slot:          %d", res.Slot),
		"Status:        " + status,
		fmt.Sprintf("Compute units: %d", res.ComputeUnits),
	}
	for _, ix := range res.Instructions {
		lines = append(lines, ix.lines()...)
	}
	if program, msg := solanalog.FirstError(res.Invocations); program != "" {
		lines = append(lines, "First error:   "+program+": "+msg)
	}
	lines = append(lines, "Invocations:")
	var walk func(invs []*solanalog.Invocation)
	walk = func(invs []*solanalog.Invocation) {
		for _, inv := range invs {
			indent := fmt.Sprintf("%*s", inv.Depth*2, "")
			state := "ok"
			if !inv.Succeeded {
				state = "failed"
				if inv.Error != "" {
					state += ": " + inv.Error
				}
			}
			lines = append(lines, fmt.Sprintf("%s%s (%d CU, %s)", indent, inv.Program, inv.ComputeUnits, state))
			for _, l := range inv.Logs {
				lines = append(lines, indent+"  | "+l)
			}
			walk(inv.Inner)
		}
	}
	walk(res.Invocations)
	return lines
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("program", "", "AMM program id (overrides "+config.EnvAMMProgramID+")")
}
