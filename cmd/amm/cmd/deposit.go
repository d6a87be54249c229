package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/pool"
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit liquidity into a pool",
	Long: `Send a Deposit for the pool keyed by MARKET_ADDRESS. The base side (0 coin,
1 pc) fixes which maximum is exact. The trailing other-amount minimum is sent
only with DEPOSIT_WITH_OTHER_AMOUNT_MIN=true or --other-amount-min.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"market", config.EnvMarketAddress},
			flagEnv{"base-side", config.EnvDepositBaseSide},
			flagEnv{"max-coin", config.EnvDepositMaxCoin},
			flagEnv{"max-pc", config.EnvDepositMaxPc},
			flagEnv{"other-amount-min", config.EnvDepositOtherAmountMin},
			flagEnv{"decimals", config.EnvTokenDecimals},
		)
		if cmd.Flags().Changed("other-amount-min") {
			flags.Set(config.EnvDepositWithOtherMin, "true")
		}
		if err := applyUIAmounts(cmd,
			flagEnv{"ui-max-coin", config.EnvDepositMaxCoin},
			flagEnv{"ui-max-pc", config.EnvDepositMaxPc},
		); err != nil {
			return err
		}

		params, err := app.env.DepositParams()
		if err != nil {
			return err
		}
		w, err := app.Wallet()
		if err != nil {
			return err
		}

		built, err := pool.Deposit(params, w.PublicKey())
		if err != nil {
			return err
		}
		app.logger.Info("depositing",
			"pool", built.Keys.Pool.Address,
			"max_coin", params.MaxCoin,
			"max_pc", params.MaxPc,
			"base_side", params.BaseSide)
		return submitBuilt(cmd, built, w)
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)

	f := depositCmd.Flags()
	f.String("market", "", "market address (overrides "+config.EnvMarketAddress+")")
	f.Uint64("base-side", 0, "0 for coin, 1 for pc")
	f.Uint64("max-coin", 0, "maximum coin amount in base units")
	f.Uint64("max-pc", 0, "maximum pc amount in base units")
	f.Uint64("other-amount-min", 0, "minimum amount of the non-base side")
	f.Uint8("decimals", 6, "decimals used by --ui-* amounts (overrides "+config.EnvTokenDecimals+")")
	f.String("ui-max-coin", "", "maximum coin amount in UI units")
	f.String("ui-max-pc", "", "maximum pc amount in UI units")
	addDryRunFlag(depositCmd)
}
