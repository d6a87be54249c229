package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	amerrors "github.com/lugondev/go-amm/internal/errors"
)

// DefaultPollInterval is how often ConfirmTransaction asks for signature status.
const DefaultPollInterval = 700 * time.Millisecond

// Client wraps the Solana RPC client
type Client struct {
	rpc          *rpc.Client
	commitment   rpc.CommitmentType
	pollInterval time.Duration
}

// SendOptions control how a signed transaction is handed to the node.
type SendOptions struct {
	SkipPreflight bool
	Commitment    rpc.CommitmentType
}

// NewClient creates a new Solana client. An empty commitment means confirmed.
func NewClient(endpoint string, commitment rpc.CommitmentType) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:          rpc.New(endpoint),
		commitment:   commitment,
		pollInterval: DefaultPollInterval,
	}
}

// Commitment returns the commitment used for reads and confirmation.
func (c *Client) Commitment() rpc.CommitmentType {
	return c.commitment
}

// RPC exposes the underlying client for calls not wrapped here.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// GetBalance returns the balance of an account in lamports
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return result.Value, nil
}

// GetLatestBlockhash returns the latest blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// GetAccountInfo returns the account info for a given public key
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	return result, nil
}

// AccountExists reports whether pubkey holds an account.
func (c *Client) AccountExists(ctx context.Context, pubkey solana.PublicKey) (bool, error) {
	result, err := c.GetAccountInfo(ctx, pubkey)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return result != nil && result.Value != nil, nil
}

// GetMinimumBalanceForRentExemption returns the rent-exempt minimum for size bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, size, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption for %d bytes: %w", size, err)
	}
	return lamports, nil
}

// RequestAirdrop requests an airdrop of SOL (only works on devnet/testnet)
func (c *Client) RequestAirdrop(ctx context.Context, pubkey solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, pubkey, lamports, c.commitment)
	if err != nil {
		return solana.Signature{}, amerrors.RemoteRejected("airdrop", err)
	}
	return sig, nil
}

// AirdropIfNeeded tops pubkey up to minLamports and waits for confirmation.
// It returns the zero signature when the balance is already sufficient.
func (c *Client) AirdropIfNeeded(ctx context.Context, pubkey solana.PublicKey, minLamports uint64) (solana.Signature, error) {
	balance, err := c.GetBalance(ctx, pubkey)
	if err != nil {
		return solana.Signature{}, err
	}
	if balance >= minLamports {
		return solana.Signature{}, nil
	}

	sig, err := c.RequestAirdrop(ctx, pubkey, minLamports)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := c.ConfirmTransaction(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// GetTransaction returns transaction details
func (c *Client) GetTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	maxVersion := uint64(0)
	commitment := c.commitment
	if commitment == rpc.CommitmentProcessed {
		commitment = rpc.CommitmentConfirmed
	}
	result, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return result, nil
}

// SendTransaction sends a signed transaction. Node errors are returned as
// REMOTE_REJECTED with the node's message as cause.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOptions) (solana.Signature, error) {
	commitment := opts.Commitment
	if commitment == "" {
		commitment = c.commitment
	}
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: commitment,
	})
	if err != nil {
		return solana.Signature{}, amerrors.RemoteRejected("send transaction", err)
	}
	return sig, nil
}

// ConfirmTransaction polls signature status until the client's commitment is
// reached, the transaction fails, or ctx ends. Failed polls are retried; when
// ctx ends the last node error, if any, is reported alongside ctx.Err().
func (c *Client) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return amerrors.RemoteRejected("confirm transaction",
					fmt.Errorf("signature %s: %w (last status error: %w)", sig, ctx.Err(), lastErr))
			}
			return amerrors.RemoteRejected("confirm transaction", fmt.Errorf("signature %s: %w", sig, ctx.Err()))
		case <-ticker.C:
			result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				if ctx.Err() == nil {
					lastErr = err
				}
				continue
			}
			lastErr = nil
			if len(result.Value) == 0 || result.Value[0] == nil {
				continue
			}
			status := result.Value[0]
			if status.Err != nil {
				return amerrors.RemoteRejected("transaction", fmt.Errorf("%v", status.Err)).
					WithDetails(map[string]any{"signature": sig.String()})
			}
			if Reached(status.ConfirmationStatus, c.commitment) {
				return nil
			}
		}
	}
}

// Reached reports whether a confirmation status satisfies commitment.
func Reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch commitment {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status == rpc.ConfirmationStatusProcessed ||
			status == rpc.ConfirmationStatusConfirmed ||
			status == rpc.ConfirmationStatusFinalized
	default:
		return status == rpc.ConfirmationStatusConfirmed ||
			status == rpc.ConfirmationStatusFinalized
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	// RPC client doesn't have a close method, but we include this for future use
	return nil
}
