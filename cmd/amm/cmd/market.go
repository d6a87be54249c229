package cmd

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/market"
	"github.com/lugondev/go-amm/internal/pool"
	"github.com/lugondev/go-amm/internal/txn"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Order-book market commands",
}

var marketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the order-book accounts for a classic mint pair",
	Long: `Allocate the market, event queue, request queue, bids and asks accounts
owned by the order-book program, create the coin and pc vaults and derive the
vault signer. Each account is created in its own transaction. The printed
MARKET_* variables feed pool init, deposit and swap.

Reads COIN_MINT_SPL and PC_MINT_SPL, see tokens create --spl-wrappers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"openbook", config.EnvOpenBookProgramID},
			flagEnv{"coin-mint", config.EnvCoinMintSPL},
			flagEnv{"pc-mint", config.EnvPcMintSPL},
		)

		params, err := app.env.MarketParams()
		if err != nil {
			return err
		}
		w, err := app.Wallet()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		client := app.Client()
		plan, err := market.CreatePlan(w.PublicKey(), params.OpenBook, params.CoinMint, params.PcMint,
			func(size uint64) (uint64, error) {
				return client.GetMinimumBalanceForRentExemption(ctx, size)
			})
		if err != nil {
			return err
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); !dry {
			if err := runMarketPlan(ctx, plan, w.PrivateKey()); err != nil {
				return err
			}
		}
		return app.print(plan.EnvLines(), plan)
	},
}

func runMarketPlan(ctx context.Context, plan *market.Plan, payer solana.PrivateKey) error {
	sub, err := app.Submitter(ctx)
	if err != nil {
		return err
	}
	for _, step := range plan.Steps {
		app.printf("Creating %s...\n", step.Name)
		res, err := sub.Submit(ctx, &txn.Request{
			Operation:    pool.OpMarket,
			Payer:        payer,
			Signers:      step.Signers,
			Instructions: step.Instructions,
			ProgramID:    plan.OpenBook,
			Addresses:    plan.Addresses(),
		})
		if err != nil {
			return err
		}
		app.logger.Debug("market step confirmed", "step", step.Name, "signature", res.Signature)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.AddCommand(marketCreateCmd)

	f := marketCreateCmd.Flags()
	f.String("openbook", "", "order-book program id (overrides "+config.EnvOpenBookProgramID+")")
	f.String("coin-mint", "", "classic coin mint (overrides "+config.EnvCoinMintSPL+")")
	f.String("pc-mint", "", "classic pc mint (overrides "+config.EnvPcMintSPL+")")
	addDryRunFlag(marketCreateCmd)
}
