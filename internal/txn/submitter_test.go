package txn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"

	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/journal"
	"github.com/lugondev/go-amm/internal/metrics"
	solclient "github.com/lugondev/go-amm/internal/solana"
)

type fakeRPC struct {
	mu         sync.Mutex
	blockhash  solana.Hash
	sent       []*solana.Transaction
	sendOpts   []solclient.SendOptions
	sendErr    error
	confirmErr error
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return f.blockhash, nil
}

func (f *fakeRPC) SendTransaction(ctx context.Context, tx *solana.Transaction, opts solclient.SendOptions) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sent = append(f.sent, tx)
	f.sendOpts = append(f.sendOpts, opts)
	return tx.Signatures[0], nil
}

func (f *fakeRPC) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	return f.confirmErr
}

var testProgram = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

func testInstruction(signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(testProgram, solana.AccountMetaSlice{
		solana.NewAccountMeta(signer, true, true),
	}, []byte{9, 1, 2, 3})
}

func newFake() *fakeRPC {
	return &fakeRPC{blockhash: solana.Hash{1, 2, 3}}
}

func TestSubmitConfirmed(t *testing.T) {
	rpcClient := newFake()
	m := metrics.NewLogMetrics(nil)
	repo := journal.NewMemoryRepository()
	s := NewSubmitter(rpcClient, Options{SkipPreflight: true}).WithMetrics(m).WithJournal(repo)

	payer := solana.NewWallet().PrivateKey
	res, err := s.Submit(context.Background(), &Request{
		Operation:    "swap",
		Payer:        payer,
		Instructions: []solana.Instruction{testInstruction(payer.PublicKey())},
		Addresses:    map[string]string{"pool": "p"},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if len(rpcClient.sent) != 1 {
		t.Fatalf("Expected 1 transaction sent, got %d", len(rpcClient.sent))
	}
	tx := rpcClient.sent[0]
	if err := tx.VerifySignatures(); err != nil {
		t.Errorf("Signature verification failed: %v", err)
	}
	if !rpcClient.sendOpts[0].SkipPreflight {
		t.Error("Expected SkipPreflight to be forwarded")
	}
	if res.Signature != tx.Signatures[0] {
		t.Error("Result signature mismatch")
	}

	if m.Counter(metrics.MetricTransactionsSubmitted) != 1 || m.Counter(metrics.MetricTransactionsConfirmed) != 1 {
		t.Error("Expected submitted and confirmed counters")
	}
	if len(m.Histogram(metrics.MetricConfirmationTimeMilliseconds)) != 1 {
		t.Error("Expected one confirmation time sample")
	}

	entry, _ := repo.FindBySignature(context.Background(), res.Signature.String())
	if entry == nil {
		t.Fatal("Expected journal entry")
	}
	if entry.Status != journal.StatusConfirmed || entry.Operation != "swap" || entry.ProgramID != testProgram.String() {
		t.Errorf("Unexpected journal entry %+v", entry)
	}
	if entry.Addresses["pool"] != "p" {
		t.Error("Expected addresses to be journaled")
	}
}

func TestSubmitExtraSigners(t *testing.T) {
	rpcClient := newFake()
	s := NewSubmitter(rpcClient, Options{})

	payer := solana.NewWallet().PrivateKey
	mint := solana.NewWallet().PrivateKey
	_, err := s.Submit(context.Background(), &Request{
		Operation: "tokens",
		Payer:     payer,
		Signers:   []solana.PrivateKey{mint},
		Instructions: []solana.Instruction{
			testInstruction(payer.PublicKey()),
			testInstruction(mint.PublicKey()),
		},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	tx := rpcClient.sent[0]
	if len(tx.Signatures) != 2 {
		t.Fatalf("Expected 2 signatures, got %d", len(tx.Signatures))
	}
	if err := tx.VerifySignatures(); err != nil {
		t.Errorf("Signature verification failed: %v", err)
	}
	if !tx.Message.AccountKeys[0].Equals(payer.PublicKey()) {
		t.Error("Payer must be the first account")
	}
}

func TestSubmitSendRejected(t *testing.T) {
	rpcClient := newFake()
	rpcClient.sendErr = amerrors.RemoteRejected("send transaction", errors.New("blockhash not found"))
	m := metrics.NewLogMetrics(nil)
	repo := journal.NewMemoryRepository()
	s := NewSubmitter(rpcClient, Options{}).WithMetrics(m).WithJournal(repo)

	payer := solana.NewWallet().PrivateKey
	_, err := s.Submit(context.Background(), &Request{
		Operation:    "deposit",
		Payer:        payer,
		Instructions: []solana.Instruction{testInstruction(payer.PublicKey())},
	})
	if !amerrors.Is(err, amerrors.ErrRemoteRejected) {
		t.Fatalf("Expected REMOTE_REJECTED, got %v", err)
	}
	if m.Counter(metrics.MetricTransactionsFailed) != 1 {
		t.Error("Expected failed counter")
	}
	recent, _ := repo.FindRecent(context.Background(), 10)
	if len(recent) != 1 || recent[0].Status != journal.StatusFailed || recent[0].Error == "" {
		t.Errorf("Expected one failed journal entry, got %+v", recent)
	}
}

func TestSubmitConfirmFailed(t *testing.T) {
	rpcClient := newFake()
	rpcClient.confirmErr = amerrors.RemoteRejected("transaction", errors.New("InstructionError"))
	repo := journal.NewMemoryRepository()
	s := NewSubmitter(rpcClient, Options{}).WithJournal(repo)

	payer := solana.NewWallet().PrivateKey
	res, err := s.Submit(context.Background(), &Request{
		Operation:    "smoke",
		Payer:        payer,
		Instructions: []solana.Instruction{testInstruction(payer.PublicKey())},
	})
	if !amerrors.Is(err, amerrors.ErrRemoteRejected) {
		t.Fatalf("Expected REMOTE_REJECTED, got %v", err)
	}
	if res == nil || res.Signature.IsZero() {
		t.Fatal("Expected the signature of the sent transaction")
	}
	entry, _ := repo.FindBySignature(context.Background(), res.Signature.String())
	if entry == nil || entry.Status != journal.StatusFailed {
		t.Errorf("Expected failed entry, got %+v", entry)
	}
}

func TestSubmitNoInstructions(t *testing.T) {
	s := NewSubmitter(newFake(), Options{})
	_, err := s.Submit(context.Background(), &Request{Payer: solana.NewWallet().PrivateKey})
	if err == nil {
		t.Error("Expected error for empty instruction list")
	}
}

type failingJournal struct{ journal.NopRepository }

func (failingJournal) Save(context.Context, *journal.Entry) error { return errors.New("disk full") }

func TestSubmitJournalFailureIsNotFatal(t *testing.T) {
	m := metrics.NewLogMetrics(nil)
	s := NewSubmitter(newFake(), Options{}).WithMetrics(m).WithJournal(failingJournal{})

	payer := solana.NewWallet().PrivateKey
	_, err := s.Submit(context.Background(), &Request{
		Operation:    "swap",
		Payer:        payer,
		Instructions: []solana.Instruction{testInstruction(payer.PublicKey())},
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if m.Counter(metrics.MetricJournalWriteFailures) != 1 {
		t.Error("Expected journal failure counter")
	}
}

func TestComputeBudgetInstructions(t *testing.T) {
	ixs, err := ComputeBudgetInstructions(Options{})
	if err != nil || len(ixs) != 0 {
		t.Errorf("Expected no instructions, got %d (%v)", len(ixs), err)
	}

	ixs, err = ComputeBudgetInstructions(Options{ComputeUnitLimit: 400_000, ComputeUnitPrice: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if len(ixs) != 2 {
		t.Fatalf("Expected 2 instructions, got %d", len(ixs))
	}
	for _, ix := range ixs {
		if !ix.ProgramID().Equals(computebudget.ProgramID) {
			t.Errorf("Expected compute budget program, got %s", ix.ProgramID())
		}
	}
	data, _ := ixs[0].Data()
	if data[0] != 2 {
		t.Errorf("Expected SetComputeUnitLimit first, got discriminator %d", data[0])
	}
}

func TestBuildUnsigned(t *testing.T) {
	s := NewSubmitter(newFake(), Options{ComputeUnitPrice: 5, Timeout: time.Second})
	payer := solana.NewWallet().PublicKey()

	tx, err := s.BuildUnsigned(context.Background(), payer, []solana.Instruction{testInstruction(payer)})
	if err != nil {
		t.Fatal(err)
	}
	if len(tx.Signatures) != 0 {
		t.Error("Expected no signatures")
	}
	if len(tx.Message.Instructions) != 2 {
		t.Errorf("Expected budget plus payload instruction, got %d", len(tx.Message.Instructions))
	}
	if !tx.Message.AccountKeys[0].Equals(payer) {
		t.Error("Expected payer first")
	}
}
