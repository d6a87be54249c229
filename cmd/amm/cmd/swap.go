package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/pool"
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swap an exact input amount",
	Long: `Send SwapBaseIn through the pool keyed by MARKET_ADDRESS. All seven market
accounts must be configured. --with-target-orders sends the 18-account form
that carries the target-orders account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"market", config.EnvMarketAddress},
			flagEnv{"source", config.EnvSwapSourceATA},
			flagEnv{"dest", config.EnvSwapDestATA},
			flagEnv{"amount-in", config.EnvSwapAmountIn},
			flagEnv{"min-out", config.EnvSwapMinimumOut},
			flagEnv{"with-target-orders", config.EnvSwapWithTargetOrders},
			flagEnv{"decimals", config.EnvTokenDecimals},
		)
		if err := applyUIAmounts(cmd,
			flagEnv{"ui-amount-in", config.EnvSwapAmountIn},
			flagEnv{"ui-min-out", config.EnvSwapMinimumOut},
		); err != nil {
			return err
		}

		params, err := app.env.SwapParams()
		if err != nil {
			return err
		}
		w, err := app.Wallet()
		if err != nil {
			return err
		}

		built, err := pool.Swap(params, w.PublicKey())
		if err != nil {
			return err
		}
		app.logger.Info("swapping",
			"pool", built.Keys.Pool.Address,
			"amount_in", params.AmountIn,
			"minimum_out", params.MinimumOut)
		return submitBuilt(cmd, built, w)
	},
}

func init() {
	rootCmd.AddCommand(swapCmd)

	f := swapCmd.Flags()
	f.String("market", "", "market address (overrides "+config.EnvMarketAddress+")")
	f.String("source", "", "source token account (overrides "+config.EnvSwapSourceATA+")")
	f.String("dest", "", "destination token account (overrides "+config.EnvSwapDestATA+")")
	f.Uint64("amount-in", 0, "input amount in base units")
	f.Uint64("min-out", 0, "minimum output amount in base units")
	f.Bool("with-target-orders", false, "include the target-orders account")
	f.Uint8("decimals", 6, "decimals used by --ui-* amounts (overrides "+config.EnvTokenDecimals+")")
	f.String("ui-amount-in", "", "input amount in UI units")
	f.String("ui-min-out", "", "minimum output amount in UI units")
	addDryRunFlag(swapCmd)
}
