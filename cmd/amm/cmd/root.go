package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lugondev/go-amm/internal/config"
	amerrors "github.com/lugondev/go-amm/internal/errors"
)

var (
	envFile string
	output  string

	// flags is the viper instance CLI flags are bound to; it is also the
	// configuration source, so a set flag beats the env file and environment.
	flags = viper.New()

	// app is populated by PersistentPreRunE.
	app *appContext
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "amm",
	Short: "AMM pool setup and trading CLI",
	Long: `amm drives an AMM program on Solana: it derives pool addresses, creates
test mints and order-book markets, initializes pools, deposits liquidity and
swaps.

Configuration comes from an env file (.env by default), the process
environment and flags, in increasing precedence. Address-printing commands
support --output text|json|yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = newAppContext(cmd.OutOrStdout(), cmd.ErrOrStderr())
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app != nil {
			return app.Close(cmd.Context())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if code := amerrors.Code(err); code != "" {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&envFile, "env-file", "", "env file to load (default .env when present)")
	pf.StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	pf.String("rpc", "", "Solana RPC endpoint (overrides "+config.EnvRPCURL+")")
	pf.String("network", "", "Solana network: mainnet, devnet, testnet or localnet")
	pf.String("wallet", "", "payer keypair file (overrides "+config.EnvWalletPath+")")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text or json")

	bindFlag(pf.Lookup("rpc"), config.EnvRPCURL)
	bindFlag(pf.Lookup("network"), config.EnvNetwork)
	bindFlag(pf.Lookup("wallet"), config.EnvWalletPath)
	bindFlag(pf.Lookup("log-level"), config.EnvLogLevel)
	bindFlag(pf.Lookup("log-format"), config.EnvLogFormat)
}
