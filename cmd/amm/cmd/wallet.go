package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/amount"
	"github.com/lugondev/go-amm/internal/metrics"
	solclient "github.com/lugondev/go-amm/internal/solana"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Wallet management commands",
	Long:  `Commands for managing the payer wallet: generation, balance checks and devnet airdrops.`,
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new wallet",
	Long: `Generate a new Solana wallet keypair. With --out the keypair is written in
Solana CLI format (JSON byte array, mode 0600) and can be used as WALLET_PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := solclient.NewWallet()

		path, _ := cmd.Flags().GetString("out")
		if path != "" {
			if err := w.SaveToFile(path); err != nil {
				return err
			}
		}

		type newWallet struct {
			PublicKey string `json:"public_key" yaml:"public_key"`
			Path      string `json:"path,omitempty" yaml:"path,omitempty"`
		}
		lines := []string{
			"New wallet generated!",
			fmt.Sprintf("  Public Key:  %s", w.PublicKey()),
		}
		if path != "" {
			lines = append(lines, fmt.Sprintf("  Saved to:    %s", solclient.ExpandPath(path)))
		} else {
			lines = append(lines,
				fmt.Sprintf("  Private Key: %s", w.PrivateKey()),
				"",
				"WARNING: Save your private key securely. Never share it with anyone!",
			)
		}
		return app.print(lines, newWallet{PublicKey: w.PublicKey().String(), Path: path})
	},
}

// addressOrPayer parses args[0], or falls back to the payer wallet.
func addressOrPayer(args []string) (solana.PublicKey, error) {
	if len(args) > 0 {
		pk, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("invalid address: %w", err)
		}
		return pk, nil
	}
	w, err := app.Wallet()
	if err != nil {
		return solana.PublicKey{}, err
	}
	return w.PublicKey(), nil
}

type balanceResult struct {
	Address  string `json:"address" yaml:"address"`
	Lamports uint64 `json:"lamports" yaml:"lamports"`
	SOL      string `json:"sol" yaml:"sol"`
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Check wallet balance",
	Long:  `Check the SOL balance of an address, or of the payer wallet when omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubKey, err := addressOrPayer(args)
		if err != nil {
			return err
		}

		lamports, err := app.Client().GetBalance(cmd.Context(), pubKey)
		if err != nil {
			return err
		}
		app.metrics.UpdateGauge(cmd.Context(), metrics.MetricPayerBalanceLamports, float64(lamports))

		return app.print([]string{
			fmt.Sprintf("Address: %s", pubKey),
			fmt.Sprintf("Balance: %s (%d lamports)", amount.FormatSOL(lamports), lamports),
		}, balanceResult{Address: pubKey.String(), Lamports: lamports, SOL: amount.FromBaseUnits(lamports, amount.SOLDecimals)})
	},
}

var walletAirdropCmd = &cobra.Command{
	Use:   "airdrop [address]",
	Short: "Top up a devnet or testnet balance",
	Long: `Request an airdrop when the balance is below --min SOL and wait for it to
confirm. Does nothing when the balance already suffices.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubKey, err := addressOrPayer(args)
		if err != nil {
			return err
		}
		minSOL, _ := cmd.Flags().GetString("min")
		minLamports, err := amount.ToBaseUnits(minSOL, amount.SOLDecimals)
		if err != nil {
			return err
		}

		sig, err := app.Client().AirdropIfNeeded(cmd.Context(), pubKey, minLamports)
		if err != nil {
			return err
		}

		type airdropResult struct {
			Address   string `json:"address" yaml:"address"`
			Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
		}
		res := airdropResult{Address: pubKey.String()}
		line := "Balance already sufficient, no airdrop requested"
		if !sig.IsZero() {
			res.Signature = sig.String()
			line = "Airdrop confirmed: " + sig.String()
		}
		return app.print([]string{line}, res)
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletNewCmd)
	walletCmd.AddCommand(walletBalanceCmd)
	walletCmd.AddCommand(walletAirdropCmd)

	walletNewCmd.Flags().String("out", "", "write the keypair to this file")
	walletAirdropCmd.Flags().String("min", "1", "minimum balance in SOL")
}
