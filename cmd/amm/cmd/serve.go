package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transaction-building HTTP API",
	Long: `Start an HTTP API that derives pool keys, decodes payloads and returns
unsigned init-pool, deposit and swap transactions for a browser wallet to sign.
The server never holds a private key.

RAYDIUM_AMM_PROGRAM_ID is optional here; without it every request must carry
program_id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd, flagEnv{"addr", config.EnvServerAddr})
		addr := app.env.Get(config.EnvServerAddr, app.cfg.Server.Addr)

		var (
			programs config.Programs
			err      error
		)
		if programs.AMM, err = app.env.OptionalPublicKey(config.EnvAMMProgramID); err != nil {
			return err
		}
		if programs.OpenBook, err = app.env.PublicKey(config.EnvOpenBookProgramID, config.DefaultOpenBookProgramID); err != nil {
			return err
		}
		if programs.CreateFeeDestination, err = app.env.PublicKey(config.EnvCreatePoolFeeDest, config.DefaultCreatePoolFeeDest); err != nil {
			return err
		}

		repo, err := app.Journal(cmd.Context())
		if err != nil {
			return err
		}
		sub, err := app.Submitter(cmd.Context())
		if err != nil {
			return err
		}

		srv := server.New(sub, programs,
			server.WithJournal(repo),
			server.WithLogger(app.logger),
		)
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (overrides "+config.EnvServerAddr+")")
}
