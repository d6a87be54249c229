package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-amm/internal/common"
	"github.com/lugondev/go-amm/internal/config"
	"github.com/lugondev/go-amm/internal/journal"
	"github.com/lugondev/go-amm/internal/metrics"
	solclient "github.com/lugondev/go-amm/internal/solana"
	"github.com/lugondev/go-amm/internal/txn"

	// Journal backends register themselves.
	_ "github.com/lugondev/go-amm/internal/journal/mongodb"
	_ "github.com/lugondev/go-amm/internal/journal/mysql"
	_ "github.com/lugondev/go-amm/internal/journal/postgres"
)

// bindFlag exposes flag under an environment variable name.
func bindFlag(flag *pflag.Flag, name string) {
	if err := flags.BindPFlag(name, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag.Name, err))
	}
}

// appContext carries what every command needs after configuration is loaded.
type appContext struct {
	cfg     *config.Config
	env     *config.Env
	logger  *slog.Logger
	metrics *metrics.Collection
	out     io.Writer

	client  *solclient.Client
	wallet  *solclient.Wallet
	journal journal.Repository
}

func newAppContext(out, errOut io.Writer) (*appContext, error) {
	switch output {
	case "text", "json", "yaml":
	default:
		return nil, config.InvalidValue("--output", "must be text, json or yaml")
	}

	cfg, err := config.Load(config.Options{EnvFile: envFile, Viper: flags})
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(cfg.Log, errOut)
	slog.SetDefault(logger)

	return &appContext{
		cfg:     cfg,
		env:     cfg.Env(),
		logger:  logger,
		metrics: metrics.NewCollection(metrics.NewLogMetrics(logger)),
		out:     out,
	}, nil
}

// Client returns the RPC client, creating it on first use.
func (a *appContext) Client() *solclient.Client {
	if a.client == nil {
		endpoint := a.cfg.Solana.GetRPCEndpoint()
		a.client = solclient.NewClient(endpoint, commitment(a.cfg.Solana.Commitment))
		a.logger.Debug("rpc client created", "endpoint", endpoint)
	}
	return a.client
}

// Wallet loads the payer keypair on first use.
func (a *appContext) Wallet() (*solclient.Wallet, error) {
	if a.wallet == nil {
		w, err := solclient.WalletFromFile(a.cfg.Wallet.Path)
		if err != nil {
			return nil, err
		}
		a.wallet = w
	}
	return a.wallet, nil
}

// Journal opens the configured journal on first use.
func (a *appContext) Journal(ctx context.Context) (journal.Repository, error) {
	if a.journal == nil {
		repo, err := journal.Open(ctx, &a.cfg.Journal)
		if err != nil {
			return nil, err
		}
		a.journal = repo
	}
	return a.journal, nil
}

// Submitter wires the client, metrics and journal into a submitter.
func (a *appContext) Submitter(ctx context.Context) (*txn.Submitter, error) {
	repo, err := a.Journal(ctx)
	if err != nil {
		return nil, err
	}
	s := a.cfg.Solana
	return txn.NewSubmitter(a.Client(), txn.Options{
		SkipPreflight:    s.SkipPreflight,
		Commitment:       commitment(s.Commitment),
		ComputeUnitLimit: s.ComputeUnitLimit,
		ComputeUnitPrice: s.ComputeUnitPrice,
		Timeout:          s.TimeoutDuration(),
	}).WithLogger(a.logger).WithMetrics(a.metrics).WithJournal(repo), nil
}

// Close flushes metrics and releases the journal.
func (a *appContext) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.metrics.Flush(ctx)
	if a.client != nil {
		a.client.Close()
	}
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}

// print writes v as JSON or YAML, or lines as text.
func (a *appContext) print(lines []string, v any) error {
	switch output {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(a.out, strings.Join(lines, "\n"))
		return err
	}
}

// printf writes human-readable progress; suppressed for json and yaml.
func (a *appContext) printf(format string, args ...any) {
	if output == "text" {
		fmt.Fprintf(a.out, format, args...)
	}
}

func commitment(s string) rpc.CommitmentType {
	return rpc.CommitmentType(strings.ToLower(s))
}
