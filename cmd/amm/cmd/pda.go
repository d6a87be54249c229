package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/amm"
	"github.com/lugondev/go-amm/internal/config"
)

var pdaCmd = &cobra.Command{
	Use:   "pda",
	Short: "Derive the pool addresses of a market",
	Long: `Derive the program-derived addresses of the pool keyed by a market: the
program-wide authority and config plus the per-market pool, open orders,
target orders, LP mint and both vaults. Needs no network.`,
	Example: `  amm pda --market 7Bn...
  amm pda -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"program", config.EnvAMMProgramID},
			flagEnv{"market", config.EnvMarketAddress},
		)

		programID, err := app.env.RequirePublicKey(config.EnvAMMProgramID)
		if err != nil {
			return err
		}
		market, err := app.env.RequirePublicKey(config.EnvMarketAddress)
		if err != nil {
			return err
		}

		keys, err := amm.DerivePoolKeys(programID, market)
		if err != nil {
			return err
		}
		return app.print(keys.EnvLines(), keys)
	},
}

func init() {
	rootCmd.AddCommand(pdaCmd)
	pdaCmd.Flags().String("program", "", "AMM program id (overrides "+config.EnvAMMProgramID+")")
	pdaCmd.Flags().String("market", "", "market address (overrides "+config.EnvMarketAddress+")")
}
