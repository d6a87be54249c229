// Package txn assembles, signs, sends and confirms transactions.
package txn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/go-amm/internal/common"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/journal"
	"github.com/lugondev/go-amm/internal/metrics"
	solclient "github.com/lugondev/go-amm/internal/solana"
)

// RPC is the part of the ledger client the submitter needs.
type RPC interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts solclient.SendOptions) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}

// Options control submission.
type Options struct {
	SkipPreflight bool
	Commitment    rpc.CommitmentType
	// ComputeUnitLimit and ComputeUnitPrice prepend compute-budget
	// instructions when non-zero. Price is in micro-lamports.
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
	// Timeout bounds send plus confirmation. Zero means no extra deadline.
	Timeout time.Duration
}

// Request is one transaction to submit.
type Request struct {
	// Operation names the request in logs and the journal.
	Operation    string
	Payer        solana.PrivateKey
	Signers      []solana.PrivateKey
	Instructions []solana.Instruction
	// ProgramID is journaled; zero falls back to the last instruction's program.
	ProgramID solana.PublicKey
	Addresses map[string]string
}

// Result of a confirmed submission.
type Result struct {
	Signature solana.Signature `json:"signature" yaml:"signature"`
	Elapsed   time.Duration    `json:"elapsed" yaml:"elapsed"`
}

// Submitter sends transactions one at a time.
type Submitter struct {
	common.LoggerMixin

	rpc     RPC
	opts    Options
	metrics metrics.Metrics
	journal journal.Repository
	now     func() time.Time
}

// NewSubmitter creates a submitter with no-op metrics and journal.
func NewSubmitter(client RPC, opts Options) *Submitter {
	return &Submitter{
		LoggerMixin: common.NewLoggerMixin(),
		rpc:         client,
		opts:        opts,
		metrics:     metrics.NewNoopMetrics(),
		journal:     journal.NopRepository{},
		now:         time.Now,
	}
}

// WithLogger sets the logger.
func (s *Submitter) WithLogger(logger *slog.Logger) *Submitter {
	s.SetLogger(logger)
	return s
}

// WithMetrics sets the metrics sink.
func (s *Submitter) WithMetrics(m metrics.Metrics) *Submitter {
	if m != nil {
		s.metrics = m
	}
	return s
}

// WithJournal sets the journal.
func (s *Submitter) WithJournal(r journal.Repository) *Submitter {
	if r != nil {
		s.journal = r
	}
	return s
}

// Options returns the submission options.
func (s *Submitter) Options() Options {
	return s.opts
}

// ComputeBudgetInstructions returns the compute-budget instructions implied by
// opts, limit first.
func ComputeBudgetInstructions(opts Options) ([]solana.Instruction, error) {
	var ixs []solana.Instruction
	if opts.ComputeUnitLimit > 0 {
		ix, err := computebudget.NewSetComputeUnitLimitInstruction(opts.ComputeUnitLimit).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit limit instruction: %w", err)
		}
		ixs = append(ixs, ix)
	}
	if opts.ComputeUnitPrice > 0 {
		ix, err := computebudget.NewSetComputeUnitPriceInstruction(opts.ComputeUnitPrice).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit price instruction: %w", err)
		}
		ixs = append(ixs, ix)
	}
	return ixs, nil
}

// BuildUnsigned returns a transaction paid by payer with a fresh blockhash and
// no signatures, for wallets that sign elsewhere.
func (s *Submitter) BuildUnsigned(ctx context.Context, payer solana.PublicKey, ixs []solana.Instruction) (*solana.Transaction, error) {
	budget, err := ComputeBudgetInstructions(s.opts)
	if err != nil {
		return nil, err
	}
	blockhash, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := solana.NewTransaction(append(budget, ixs...), blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// Build returns a transaction signed by the payer and every extra signer.
func (s *Submitter) Build(ctx context.Context, req *Request) (*solana.Transaction, error) {
	tx, err := s.BuildUnsigned(ctx, req.Payer.PublicKey(), req.Instructions)
	if err != nil {
		return nil, err
	}

	keys := make(map[solana.PublicKey]*solana.PrivateKey, 1+len(req.Signers))
	payer := req.Payer
	keys[payer.PublicKey()] = &payer
	for i := range req.Signers {
		keys[req.Signers[i].PublicKey()] = &req.Signers[i]
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return keys[key]
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// Submit builds, signs, sends and confirms req. Node failures are returned as
// REMOTE_REJECTED. The outcome is journaled; journal errors are logged only.
func (s *Submitter) Submit(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Instructions) == 0 {
		return nil, amerrors.Custom("no instructions to submit")
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	programID := req.ProgramID
	if programID.IsZero() {
		programID = req.Instructions[len(req.Instructions)-1].ProgramID()
	}
	entry := journal.NewEntry(req.Operation, programID.String())
	entry.Addresses = req.Addresses

	logger := s.GetLogger().With("operation", req.Operation)

	tx, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordHistogram(ctx, metrics.MetricInstructionsPerTransaction, float64(len(tx.Message.Instructions)))

	start := s.now()
	sig, err := s.rpc.SendTransaction(ctx, tx, solclient.SendOptions{
		SkipPreflight: s.opts.SkipPreflight,
		Commitment:    s.opts.Commitment,
	})
	if err != nil {
		s.fail(ctx, logger, entry, err)
		return nil, err
	}
	s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsSubmitted, 1)
	entry.Signature = sig.String()
	logger.Info("transaction sent", "signature", sig)

	if err := s.rpc.ConfirmTransaction(ctx, sig); err != nil {
		s.fail(ctx, logger, entry, err)
		return &Result{Signature: sig}, err
	}

	elapsed := s.now().Sub(start)
	entry.Status = journal.StatusConfirmed
	entry.ConfirmationMs = elapsed.Milliseconds()
	s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsConfirmed, 1)
	s.metrics.RecordHistogram(ctx, metrics.MetricConfirmationTimeMilliseconds, float64(elapsed.Milliseconds()))
	s.record(ctx, logger, entry)
	logger.Info("transaction confirmed", "signature", sig, "elapsed", elapsed)

	return &Result{Signature: sig, Elapsed: elapsed}, nil
}

func (s *Submitter) fail(ctx context.Context, logger *slog.Logger, entry *journal.Entry, err error) {
	entry.Status = journal.StatusFailed
	entry.Error = err.Error()
	s.metrics.IncrementCounter(ctx, metrics.MetricTransactionsFailed, 1)
	s.record(ctx, logger, entry)
	logger.Error("transaction failed", "signature", entry.Signature, "error", err)
}

func (s *Submitter) record(ctx context.Context, logger *slog.Logger, entry *journal.Entry) {
	// Timed-out submissions are still journaled.
	if err := s.journal.Save(context.WithoutCancel(ctx), entry); err != nil {
		s.metrics.IncrementCounter(ctx, metrics.MetricJournalWriteFailures, 1)
		logger.Warn("failed to journal transaction", "id", entry.ID, "error", err)
	}
}
