package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/pool"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Pool lifecycle commands",
}

var poolInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a pool on an existing market",
	Long: `Send Initialize2 for the pool keyed by MARKET_ADDRESS. The payer funds the
pool and receives the initial LP tokens in its associated LP account.

Amounts come from INIT_COIN and INIT_PC in base units, or from --ui-init-coin
and --ui-init-pc scaled by TOKEN_DECIMALS.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"market", config.EnvMarketAddress},
			flagEnv{"open-time", config.EnvOpenTime},
			flagEnv{"decimals", config.EnvTokenDecimals},
		)
		if err := applyUIAmounts(cmd,
			flagEnv{"ui-init-coin", config.EnvInitCoin},
			flagEnv{"ui-init-pc", config.EnvInitPc},
		); err != nil {
			return err
		}

		params, err := app.env.InitPoolParams()
		if err != nil {
			return err
		}
		w, err := app.Wallet()
		if err != nil {
			return err
		}

		built, err := pool.InitPool(params, w.PublicKey(), time.Now())
		if err != nil {
			return err
		}
		app.logger.Info("initializing pool",
			"market", params.Market,
			"pool", built.Keys.Pool.Address,
			"init_coin", params.InitCoin,
			"init_pc", params.InitPc)
		return submitBuilt(cmd, built, w)
	},
}

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolInitCmd)

	f := poolInitCmd.Flags()
	f.String("market", "", "market address (overrides "+config.EnvMarketAddress+")")
	f.Uint64("open-time", 0, "pool open time in unix seconds; 0 means now minus 30s")
	f.Uint8("decimals", 6, "decimals used by --ui-* amounts (overrides "+config.EnvTokenDecimals+")")
	f.String("ui-init-coin", "", "initial coin amount in UI units")
	f.String("ui-init-pc", "", "initial pc amount in UI units")
	addDryRunFlag(poolInitCmd)
}
