package amm

import (
	"bytes"
	"testing"

	"github.com/gagliardetto/solana-go"
)

type wantMeta struct {
	key      solana.PublicKey
	writable bool
	signer   bool
}

func checkMetas(t *testing.T, got solana.AccountMetaSlice, want []wantMeta) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d accounts, got %d", len(want), len(got))
	}
	for i, w := range want {
		m := got[i]
		if !m.PublicKey.Equals(w.key) {
			t.Errorf("account %d: expected %s, got %s", i, w.key, m.PublicKey)
		}
		if m.IsWritable != w.writable {
			t.Errorf("account %d: expected writable=%v, got %v", i, w.writable, m.IsWritable)
		}
		if m.IsSigner != w.signer {
			t.Errorf("account %d: expected signer=%v, got %v", i, w.signer, m.IsSigner)
		}
	}
}

func key(t *testing.T) solana.PublicKey {
	t.Helper()
	return solana.NewWallet().PublicKey()
}

func TestInitialize2Metas(t *testing.T) {
	a := &Initialize2Accounts{
		TokenProgram:         solana.TokenProgramID,
		Pool:                 key(t),
		Authority:            key(t),
		OpenOrders:           key(t),
		LpMint:               key(t),
		CoinMint:             key(t),
		PcMint:               key(t),
		CoinVault:            key(t),
		PcVault:              key(t),
		TargetOrders:         key(t),
		Config:               key(t),
		CreateFeeDestination: key(t),
		MarketProgram:        key(t),
		Market:               key(t),
		Payer:                key(t),
		UserCoin:             key(t),
		UserPc:               key(t),
		UserLp:               key(t),
	}

	checkMetas(t, a.Metas(), []wantMeta{
		{solana.TokenProgramID, false, false},
		{solana.SPLAssociatedTokenAccountProgramID, false, false},
		{solana.SystemProgramID, false, false},
		{solana.SysVarRentPubkey, false, false},
		{a.Pool, true, false},
		{a.Authority, false, false},
		{a.OpenOrders, true, false},
		{a.LpMint, true, false},
		{a.CoinMint, false, false},
		{a.PcMint, false, false},
		{a.CoinVault, true, false},
		{a.PcVault, true, false},
		{a.TargetOrders, true, false},
		{a.Config, false, false},
		{a.CreateFeeDestination, true, false},
		{a.MarketProgram, false, false},
		{a.Market, false, false},
		{a.Payer, true, true},
		// Writable, unlike the read-only pair older client scripts sent.
		{a.UserCoin, true, false},
		{a.UserPc, true, false},
		{a.UserLp, true, false},
	})
}

func TestDepositMetas(t *testing.T) {
	a := &DepositAccounts{
		TokenProgram: solana.TokenProgramID,
		Pool:         key(t),
		Authority:    key(t),
		OpenOrders:   key(t),
		TargetOrders: key(t),
		LpMint:       key(t),
		CoinVault:    key(t),
		PcVault:      key(t),
		Market:       key(t),
		UserCoin:     key(t),
		UserPc:       key(t),
		UserLp:       key(t),
		Owner:        key(t),
		EventQueue:   key(t),
	}

	checkMetas(t, a.Metas(), []wantMeta{
		{solana.TokenProgramID, false, false},
		{a.Pool, true, false},
		{a.Authority, false, false},
		{a.OpenOrders, false, false},
		{a.TargetOrders, true, false},
		{a.LpMint, true, false},
		{a.CoinVault, true, false},
		{a.PcVault, true, false},
		{a.Market, false, false},
		{a.UserCoin, true, false},
		{a.UserPc, true, false},
		{a.UserLp, true, false},
		{a.Owner, false, true},
		{a.EventQueue, false, false},
	})
}

func swapAccounts(t *testing.T) *SwapBaseInAccounts {
	return &SwapBaseInAccounts{
		TokenProgram:      solana.TokenProgramID,
		Pool:              key(t),
		Authority:         key(t),
		OpenOrders:        key(t),
		CoinVault:         key(t),
		PcVault:           key(t),
		MarketProgram:     key(t),
		Market:            key(t),
		Bids:              key(t),
		Asks:              key(t),
		EventQueue:        key(t),
		MarketCoinVault:   key(t),
		MarketPcVault:     key(t),
		MarketVaultSigner: key(t),
		UserSource:        key(t),
		UserDestination:   key(t),
		Owner:             key(t),
	}
}

func swapTail(a *SwapBaseInAccounts) []wantMeta {
	return []wantMeta{
		{a.CoinVault, true, false},
		{a.PcVault, true, false},
		{a.MarketProgram, false, false},
		{a.Market, true, false},
		{a.Bids, true, false},
		{a.Asks, true, false},
		{a.EventQueue, true, false},
		{a.MarketCoinVault, true, false},
		{a.MarketPcVault, true, false},
		{a.MarketVaultSigner, false, false},
		{a.UserSource, true, false},
		{a.UserDestination, true, false},
		{a.Owner, false, true},
	}
}

func TestSwapBaseInMetas(t *testing.T) {
	a := swapAccounts(t)
	want := append([]wantMeta{
		{solana.TokenProgramID, false, false},
		{a.Pool, true, false},
		{a.Authority, false, false},
		{a.OpenOrders, true, false},
	}, swapTail(a)...)
	checkMetas(t, a.Metas(), want)
}

func TestSwapBaseInMetasWithTargetOrders(t *testing.T) {
	a := swapAccounts(t)
	a.TargetOrders = key(t)
	want := append([]wantMeta{
		{solana.TokenProgramID, false, false},
		{a.Pool, true, false},
		{a.Authority, false, false},
		{a.OpenOrders, true, false},
		{a.TargetOrders, true, false},
	}, swapTail(a)...)
	checkMetas(t, a.Metas(), want)
}

func TestPoolKeysAccountsFor(t *testing.T) {
	keys, err := DerivePoolKeys(testProgramID, testMarket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	init := keys.Initialize2AccountsFor(Initialize2Accounts{Payer: key(t)})
	if !init.Pool.Equals(keys.Pool.Address) || !init.Config.Equals(keys.Config.Address) || !init.Market.Equals(testMarket) {
		t.Error("Expected Initialize2 accounts to carry derived keys")
	}

	dep := keys.DepositAccountsFor(DepositAccounts{})
	if !dep.TargetOrders.Equals(keys.TargetOrders.Address) || !dep.LpMint.Equals(keys.LpMint.Address) {
		t.Error("Expected Deposit accounts to carry derived keys")
	}

	if n := len(keys.SwapBaseInAccountsFor(SwapBaseInAccounts{}, false).Metas()); n != 17 {
		t.Errorf("Expected 17 accounts, got %d", n)
	}
	swap := keys.SwapBaseInAccountsFor(SwapBaseInAccounts{}, true)
	metas := swap.Metas()
	if len(metas) != 18 {
		t.Fatalf("Expected 18 accounts, got %d", len(metas))
	}
	if !metas[4].PublicKey.Equals(keys.TargetOrders.Address) {
		t.Errorf("Expected target orders at index 4, got %s", metas[4].PublicKey)
	}
}

func TestNewInstructions(t *testing.T) {
	keys, err := DerivePoolKeys(testProgramID, testMarket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := SwapBaseInParams{AmountIn: 10, MinimumAmountOut: 1}
	ix := NewSwapBaseInInstruction(testProgramID, params, keys.SwapBaseInAccountsFor(*swapAccounts(t), false))
	if !ix.ProgramID().Equals(testProgramID) {
		t.Errorf("Expected program %s, got %s", testProgramID, ix.ProgramID())
	}
	data, err := ix.Data()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, EncodeSwapBaseIn(params)) {
		t.Errorf("Expected swap payload, got % x", data)
	}
	if len(ix.Accounts()) != 17 {
		t.Errorf("Expected 17 accounts, got %d", len(ix.Accounts()))
	}

	dix := NewDepositInstruction(testProgramID, DepositParams{MaxCoinAmount: 1}, keys.DepositAccountsFor(DepositAccounts{}))
	if len(dix.Accounts()) != 14 {
		t.Errorf("Expected 14 accounts, got %d", len(dix.Accounts()))
	}

	iix := NewInitialize2Instruction(testProgramID, InitializeParams{Nonce: uint64(keys.Authority.Bump)}, keys.Initialize2AccountsFor(Initialize2Accounts{}))
	if len(iix.Accounts()) != 21 {
		t.Errorf("Expected 21 accounts, got %d", len(iix.Accounts()))
	}
	idata, _ := iix.Data()
	if idata[1] != keys.Authority.Bump {
		t.Errorf("Expected nonce byte %d, got %d", keys.Authority.Bump, idata[1])
	}
}
