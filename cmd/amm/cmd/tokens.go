package cmd

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/pool"
	solclient "github.com/lugondev/go-amm/internal/solana"
	"github.com/lugondev/go-amm/internal/token"
	"github.com/lugondev/go-amm/internal/txn"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Test token commands",
}

// mintInfo describes one created mint.
type mintInfo struct {
	Mint                string `json:"mint" yaml:"mint"`
	Account             string `json:"account" yaml:"account"`
	TokenProgram        string `json:"token_program" yaml:"token_program"`
	TransferHookProgram string `json:"transfer_hook_program,omitempty" yaml:"transfer_hook_program,omitempty"`
	Signature           string `json:"signature" yaml:"signature"`
}

type tokensResult struct {
	Coin    mintInfo  `json:"coin" yaml:"coin"`
	Pc      mintInfo  `json:"pc" yaml:"pc"`
	CoinSPL *mintInfo `json:"coin_spl,omitempty" yaml:"coin_spl,omitempty"`
	PcSPL   *mintInfo `json:"pc_spl,omitempty" yaml:"pc_spl,omitempty"`
}

var tokensCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a coin/pc mint pair funded to the payer",
	Long: `Create two mints with the payer as mint authority, create the payer's
associated accounts and mint TOKEN_MINT_AMOUNT into each. USE_TOKEN_2022
selects the Token-2022 program (default) and TRANSFER_HOOK_PROGRAM_ID installs
a transfer hook on both mints.

The order-book market only accepts classic mints; --spl-wrappers also creates
a classic pair and prints it as the *_SPL variables that market create reads.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd,
			flagEnv{"token-2022", config.EnvUseToken2022},
			flagEnv{"hook", config.EnvTransferHookProgramID},
			flagEnv{"decimals", config.EnvTokenDecimals},
			flagEnv{"amount", config.EnvTokenMintAmount},
		)

		params, err := app.env.TokenParams()
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
		ctx := cmd.Context()

		opts := token.MintOptions{
			TokenProgram:        token.ProgramFor(params.UseToken2022),
			TransferHookProgram: params.TransferHookProgram,
			Decimals:            params.Decimals,
			Amount:              params.MintAmount,
		}
		coin, pc, err := createMintPair(ctx, sub, w, opts)
		if err != nil {
			return err
		}
		res := tokensResult{Coin: *coin.info, Pc: *pc.info}
		lines := token.PairEnvLines(coin.plan, pc.plan)

		if wrappers, _ := cmd.Flags().GetBool("spl-wrappers"); wrappers {
			opts.TokenProgram = solana.TokenProgramID
			opts.TransferHookProgram = solana.PublicKey{}
			coinSPL, pcSPL, err := createMintPair(ctx, sub, w, opts)
			if err != nil {
				return err
			}
			res.CoinSPL, res.PcSPL = coinSPL.info, pcSPL.info
			lines = append(lines, token.SPLEnvLines(coinSPL.plan, pcSPL.plan)...)
		}
		return app.print(lines, res)
	},
}

type createdMint struct {
	plan *token.MintPlan
	info *mintInfo
}

// createMintPair creates coin then pc, one transaction each.
func createMintPair(ctx context.Context, sub *txn.Submitter, w *solclient.Wallet, opts token.MintOptions) (coin, pc *createdMint, err error) {
	rent, err := app.Client().GetMinimumBalanceForRentExemption(ctx, token.MintSize(!opts.TransferHookProgram.IsZero()))
	if err != nil {
		return nil, nil, err
	}
	opts.RentLamports = rent

	created := make([]*createdMint, 0, 2)
	for _, side := range []string{"coin", "pc"} {
		plan, err := token.CreateMintPlan(w.PublicKey(), solana.NewWallet().PrivateKey, opts)
		if err != nil {
			return nil, nil, err
		}
		app.printf("Creating %s mint %s...\n", side, plan.MintAddress())

		res, err := sub.Submit(ctx, &txn.Request{
			Operation:    pool.OpTokens,
			Payer:        w.PrivateKey(),
			Signers:      []solana.PrivateKey{plan.Mint},
			Instructions: plan.Instructions,
			ProgramID:    plan.TokenProgram,
			Addresses: map[string]string{
				side + "_mint":    plan.MintAddress().String(),
				side + "_account": plan.Account.String(),
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create %s mint: %w", side, err)
		}

		info := &mintInfo{
			Mint:         plan.MintAddress().String(),
			Account:      plan.Account.String(),
			TokenProgram: plan.TokenProgram.String(),
			Signature:    res.Signature.String(),
		}
		if !plan.TransferHookProgram.IsZero() {
			info.TransferHookProgram = plan.TransferHookProgram.String()
		}
		created = append(created, &createdMint{plan: plan, info: info})
	}
	return created[0], created[1], nil
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.AddCommand(tokensCreateCmd)

	f := tokensCreateCmd.Flags()
	f.Bool("token-2022", true, "use the Token-2022 program (overrides "+config.EnvUseToken2022+")")
	f.String("hook", "", "transfer hook program id (overrides "+config.EnvTransferHookProgramID+")")
	f.Uint8("decimals", 6, "mint decimals (overrides "+config.EnvTokenDecimals+")")
	f.Uint64("amount", 0, "base units minted to the payer (overrides "+config.EnvTokenMintAmount+")")
	f.Bool("spl-wrappers", false, "also create a classic SPL pair for the order-book market")
}
