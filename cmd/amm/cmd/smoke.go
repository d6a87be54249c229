package cmd

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/pool"
	"github.com/lugondev/go-amm/internal/txn"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Check that the AMM program is deployed and responding",
	Long: `Send an instruction with no accounts and no data to the AMM program. A live
program rejects it; that rejection is the expected outcome. Success means
something else is deployed at the address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd, flagEnv{"program", config.EnvAMMProgramID})

		programID, err := app.env.RequirePublicKey(config.EnvAMMProgramID)
		if err != nil {
			return err
		}
		w, err := app.Wallet()
		if err != nil {
			return err
		}
		sub, err := app.Submitter(cmd.Context())
		if err != nil {
			return err
		}

		type smokeResult struct {
			ProgramID string `json:"program_id" yaml:"program_id"`
			Responded bool   `json:"responded" yaml:"responded"`
			Message   string `json:"message" yaml:"message"`
		}

		_, err = sub.Submit(cmd.Context(), &txn.Request{
			Operation:    pool.OpSmoke,
			Payer:        w.PrivateKey(),
			Instructions: []solana.Instruction{pool.SmokeInstruction(programID)},
			ProgramID:    programID,
		})
		if err == nil {
			return amerrors.Custom("unexpected success: " + programID.String() + " accepted an empty instruction")
		}
		if amerrors.Code(err) != amerrors.ErrCodeRemoteRejected || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return app.print(
			[]string{"Program responded (expected error): " + err.Error()},
			smokeResult{ProgramID: programID.String(), Responded: true, Message: err.Error()},
		)
	},
}

func init() {
	rootCmd.AddCommand(smokeCmd)
	smokeCmd.Flags().String("program", "", "AMM program id (overrides "+config.EnvAMMProgramID+")")
}
