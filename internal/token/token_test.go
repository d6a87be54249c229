package token

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

func TestMintSize(t *testing.T) {
	if MintSize(false) != 82 {
		t.Errorf("Expected 82, got %d", MintSize(false))
	}
	if MintSize(true) != 234 {
		t.Errorf("Expected 234, got %d", MintSize(true))
	}
}

func TestProgramFor(t *testing.T) {
	if !ProgramFor(true).Equals(Token2022ProgramID) {
		t.Error("Expected Token-2022")
	}
	if !ProgramFor(false).Equals(solana.TokenProgramID) {
		t.Error("Expected classic token program")
	}
}

func TestAssociatedAddressMatchesClassicDerivation(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	got, err := AssociatedAddress(owner, mint, solana.TokenProgramID)
	if err != nil {
		t.Fatal(err)
	}
	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}

	other, _ := AssociatedAddress(owner, mint, Token2022ProgramID)
	if other.Equals(got) {
		t.Error("Token-2022 account must differ from the classic one")
	}
}

func TestInitializeMint2Data(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := NewInitializeMint2Instruction(Token2022ProgramID, mint, 6, authority, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.ProgramID().Equals(Token2022ProgramID) {
		t.Errorf("Expected Token-2022 program, got %s", ix.ProgramID())
	}
	if accounts := ix.Accounts(); len(accounts) != 1 || !accounts[0].PublicKey.Equals(mint) || !accounts[0].IsWritable {
		t.Error("Expected the mint as the only writable account")
	}
	data, _ := ix.Data()
	if len(data) != 35 {
		t.Fatalf("Expected 35 bytes, got %d", len(data))
	}
	if data[0] != 20 || data[1] != 6 {
		t.Errorf("Unexpected header %v", data[:2])
	}
	if !bytes.Equal(data[2:34], authority.Bytes()) {
		t.Error("Mint authority mismatch")
	}
	if data[34] != 0 {
		t.Error("Expected no freeze authority")
	}

	freeze := solana.NewWallet().PublicKey()
	ix, err = NewInitializeMint2Instruction(solana.TokenProgramID, mint, 9, authority, &freeze)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.ProgramID().Equals(solana.TokenProgramID) {
		t.Errorf("Expected classic token program, got %s", ix.ProgramID())
	}
	data, _ = ix.Data()
	if len(data) != 67 || data[34] != 1 || !bytes.Equal(data[35:], freeze.Bytes()) {
		t.Error("Expected freeze authority to be encoded")
	}
}

func TestMintToData(t *testing.T) {
	for _, program := range []solana.PublicKey{solana.TokenProgramID, Token2022ProgramID} {
		ix, err := NewMintToInstruction(program, solana.PublicKey{1}, solana.PublicKey{2}, solana.PublicKey{3}, 5)
		if err != nil {
			t.Fatal(err)
		}
		if !ix.ProgramID().Equals(program) {
			t.Errorf("Expected %s, got %s", program, ix.ProgramID())
		}
	}

	ix, err := NewMintToInstruction(solana.TokenProgramID, solana.PublicKey{1}, solana.PublicKey{2}, solana.PublicKey{3}, 1_000_000_000)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := ix.Data()
	if len(data) != 9 || data[0] != 7 {
		t.Fatalf("Unexpected data %v", data)
	}
	if binary.LittleEndian.Uint64(data[1:]) != 1_000_000_000 {
		t.Error("Amount mismatch")
	}
	accounts := ix.Accounts()
	if len(accounts) != 3 || !accounts[2].IsSigner || accounts[2].IsWritable {
		t.Error("Authority must be a read-only signer")
	}
}

func TestTransferHookData(t *testing.T) {
	authority := solana.NewWallet().PublicKey()
	hook := solana.NewWallet().PublicKey()
	ix := NewInitializeTransferHookInstruction(solana.PublicKey{1}, authority, hook)

	if !ix.ProgramID().Equals(Token2022ProgramID) {
		t.Error("Expected Token-2022 program")
	}
	data, _ := ix.Data()
	if len(data) != 66 || data[0] != 36 || data[1] != 0 {
		t.Fatalf("Unexpected header %v", data[:2])
	}
	if !bytes.Equal(data[2:34], authority.Bytes()) || !bytes.Equal(data[34:], hook.Bytes()) {
		t.Error("Authority/program mismatch")
	}
}

func TestCreateMintPlan(t *testing.T) {
	payer := solana.NewWallet().PublicKey()

	tests := []struct {
		name     string
		opts     MintOptions
		programs []solana.PublicKey
		space    uint64
	}{
		{
			name: "classic",
			opts: MintOptions{TokenProgram: solana.TokenProgramID, Decimals: 6, Amount: 1_000_000_000, RentLamports: 1461600},
			programs: []solana.PublicKey{
				solana.SystemProgramID, solana.TokenProgramID, solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID,
			},
			space: 82,
		},
		{
			name: "token-2022 with hook",
			opts: MintOptions{
				TokenProgram:        Token2022ProgramID,
				TransferHookProgram: solana.NewWallet().PublicKey(),
				Decimals:            6,
				Amount:              1,
			},
			programs: []solana.PublicKey{
				solana.SystemProgramID, Token2022ProgramID, Token2022ProgramID, solana.SPLAssociatedTokenAccountProgramID, Token2022ProgramID,
			},
			space: 234,
		},
		{
			name: "no mint amount",
			opts: MintOptions{TokenProgram: Token2022ProgramID},
			programs: []solana.PublicKey{
				solana.SystemProgramID, Token2022ProgramID, solana.SPLAssociatedTokenAccountProgramID,
			},
			space: 82,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mint := solana.NewWallet().PrivateKey
			plan, err := CreateMintPlan(payer, mint, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(plan.Instructions) != len(tt.programs) {
				t.Fatalf("Expected %d instructions, got %d", len(tt.programs), len(plan.Instructions))
			}
			for i, ix := range plan.Instructions {
				if !ix.ProgramID().Equals(tt.programs[i]) {
					t.Errorf("Instruction %d: expected program %s, got %s", i, tt.programs[i], ix.ProgramID())
				}
			}

			create, ok := plan.Instructions[0].(*system.Instruction)
			if !ok {
				t.Fatalf("Expected system instruction, got %T", plan.Instructions[0])
			}
			inst, ok := create.Impl.(system.CreateAccount)
			if !ok {
				t.Fatalf("Expected CreateAccount, got %T", create.Impl)
			}
			if *inst.Space != tt.space || !inst.Owner.Equals(plan.TokenProgram) {
				t.Errorf("Unexpected create account space=%d owner=%s", *inst.Space, inst.Owner)
			}

			want, _ := AssociatedAddress(payer, mint.PublicKey(), plan.TokenProgram)
			if !plan.Account.Equals(want) {
				t.Error("Unexpected associated account")
			}
		})
	}
}

func TestCreateMintPlanRejectsHookOnClassic(t *testing.T) {
	_, err := CreateMintPlan(solana.NewWallet().PublicKey(), solana.NewWallet().PrivateKey, MintOptions{
		TokenProgram:        solana.TokenProgramID,
		TransferHookProgram: solana.NewWallet().PublicKey(),
	})
	if err == nil {
		t.Error("Expected error for transfer hook on the classic program")
	}
}

func TestPairEnvLines(t *testing.T) {
	hook := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	coin, _ := CreateMintPlan(payer, solana.NewWallet().PrivateKey, MintOptions{TokenProgram: Token2022ProgramID, TransferHookProgram: hook})
	pc, _ := CreateMintPlan(payer, solana.NewWallet().PrivateKey, MintOptions{TokenProgram: Token2022ProgramID, TransferHookProgram: hook})

	lines := PairEnvLines(coin, pc)
	if len(lines) != 7 {
		t.Fatalf("Expected 7 lines, got %d", len(lines))
	}
	if lines[0] != "COIN_MINT="+coin.MintAddress().String() {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if lines[6] != "TRANSFER_HOOK_PROGRAM_ID="+hook.String() {
		t.Errorf("Unexpected hook line %q", lines[6])
	}

	spl := SPLEnvLines(coin, pc)
	if len(spl) != 4 || spl[1] != "PC_MINT_SPL="+pc.MintAddress().String() {
		t.Errorf("Unexpected SPL lines %v", spl)
	}
}
