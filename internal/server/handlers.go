package server

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/lugondev/go-amm/internal/amm"
	"github.com/lugondev/go-amm/internal/config"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/pool"
	"github.com/lugondev/go-amm/pkg/decoder"
)

// keyField parses a base58 field. Empty values return zero when optional and
// MISSING_CONFIG otherwise.
func keyField(name, value string, required bool) (solana.PublicKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return solana.PublicKey{}, amerrors.MissingConfig(name)
		}
		return solana.PublicKey{}, nil
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, amerrors.InvalidConfig(name, err)
	}
	return pk, nil
}

type keyRef struct {
	name     string
	value    string
	required bool
	dst      *solana.PublicKey
}

func parseKeys(refs ...keyRef) error {
	for _, r := range refs {
		pk, err := keyField(r.name, r.value, r.required)
		if err != nil {
			return err
		}
		*r.dst = pk
	}
	return nil
}

// ProgramFields override the server's default program ids.
type ProgramFields struct {
	ProgramID            string `json:"program_id"`
	OpenBookProgramID    string `json:"openbook_program_id"`
	CreateFeeDestination string `json:"create_fee_destination"`
}

func (s *Server) resolvePrograms(f ProgramFields) (config.Programs, error) {
	p := s.programs
	var override config.Programs
	if err := parseKeys(
		keyRef{"program_id", f.ProgramID, false, &override.AMM},
		keyRef{"openbook_program_id", f.OpenBookProgramID, false, &override.OpenBook},
		keyRef{"create_fee_destination", f.CreateFeeDestination, false, &override.CreateFeeDestination},
	); err != nil {
		return p, err
	}
	if !override.AMM.IsZero() {
		p.AMM = override.AMM
	}
	if !override.OpenBook.IsZero() {
		p.OpenBook = override.OpenBook
	}
	if !override.CreateFeeDestination.IsZero() {
		p.CreateFeeDestination = override.CreateFeeDestination
	}
	if p.AMM.IsZero() {
		return p, amerrors.MissingConfig("program_id")
	}
	if p.OpenBook.IsZero() {
		p.OpenBook = config.DefaultOpenBookProgramID
	}
	if p.CreateFeeDestination.IsZero() {
		p.CreateFeeDestination = config.DefaultCreatePoolFeeDest
	}
	return p, nil
}

func (s *Server) poolKeys(c *gin.Context) {
	programs, err := s.resolvePrograms(ProgramFields{ProgramID: c.Query("program_id")})
	if err != nil {
		s.fail(c, err)
		return
	}
	market, err := keyField("market", c.Query("market"), true)
	if err != nil {
		s.fail(c, err)
		return
	}
	keys, err := amm.DerivePoolKeys(programs.AMM, market)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, keys)
}

// TxResponse carries a base64 unsigned transaction for the wallet to sign.
type TxResponse struct {
	Transaction string        `json:"transaction"`
	Operation   string        `json:"operation"`
	PoolKeys    *amm.PoolKeys `json:"pool_keys"`
	UserLp      string        `json:"user_lp,omitempty"`
	Data        string        `json:"data"`
}

func (s *Server) respondTx(c *gin.Context, payer solana.PublicKey, built *pool.Built) {
	tx, err := s.builder.BuildUnsigned(c.Request.Context(), payer, []solana.Instruction{built.Instruction})
	if err != nil {
		s.fail(c, err)
		return
	}
	raw, err := encodeUnsigned(tx)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := TxResponse{
		Transaction: base64.StdEncoding.EncodeToString(raw),
		Operation:   built.Operation,
		PoolKeys:    built.Keys,
		Data:        base64.StdEncoding.EncodeToString(built.Data),
	}
	if !built.UserLp.IsZero() {
		resp.UserLp = built.UserLp.String()
	}
	c.JSON(http.StatusOK, resp)
}

// encodeUnsigned serializes tx with zeroed signature slots, the layout
// wallets expect for partially signed transactions.
func encodeUnsigned(tx *solana.Transaction) ([]byte, error) {
	if len(tx.Signatures) == 0 {
		tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	}
	return tx.MarshalBinary()
}

// InitPoolRequest is the body of POST /api/tx/init-pool.
type InitPoolRequest struct {
	ProgramFields
	Payer        string `json:"payer"`
	Market       string `json:"market"`
	CoinMint     string `json:"coin_mint"`
	PcMint       string `json:"pc_mint"`
	TokenProgram string `json:"token_program"`
	UserCoin     string `json:"user_coin"`
	UserPc       string `json:"user_pc"`
	InitPc       uint64 `json:"init_pc"`
	InitCoin     uint64 `json:"init_coin"`
	OpenTime     uint64 `json:"open_time"`
}

func (s *Server) initPoolTx(c *gin.Context) {
	var req InitPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, amerrors.InvalidConfig("body", err))
		return
	}

	var (
		payer solana.PublicKey
		p     = &config.InitPoolParams{InitPc: req.InitPc, InitCoin: req.InitCoin, OpenTime: req.OpenTime}
		err   error
	)
	if p.Programs, err = s.resolvePrograms(req.ProgramFields); err != nil {
		s.fail(c, err)
		return
	}
	if err := parseKeys(
		keyRef{"payer", req.Payer, true, &payer},
		keyRef{"market", req.Market, true, &p.Market},
		keyRef{"coin_mint", req.CoinMint, true, &p.CoinMint},
		keyRef{"pc_mint", req.PcMint, true, &p.PcMint},
		keyRef{"token_program", req.TokenProgram, false, &p.TokenProgram},
		keyRef{"user_coin", req.UserCoin, true, &p.UserCoin},
		keyRef{"user_pc", req.UserPc, true, &p.UserPc},
	); err != nil {
		s.fail(c, err)
		return
	}
	if p.TokenProgram.IsZero() {
		p.TokenProgram = solana.TokenProgramID
	}

	built, err := pool.InitPool(p, payer, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondTx(c, payer, built)
}

// DepositRequest is the body of POST /api/tx/deposit.
type DepositRequest struct {
	ProgramFields
	Owner          string  `json:"owner"`
	Market         string  `json:"market"`
	EventQueue     string  `json:"event_queue"`
	TokenProgram   string  `json:"token_program"`
	UserCoin       string  `json:"user_coin"`
	UserPc         string  `json:"user_pc"`
	MaxCoin        uint64  `json:"max_coin"`
	MaxPc          uint64  `json:"max_pc"`
	BaseSide       uint64  `json:"base_side"`
	OtherAmountMin *uint64 `json:"other_amount_min"`
}

func (s *Server) depositTx(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, amerrors.InvalidConfig("body", err))
		return
	}
	if req.BaseSide > amm.BaseSidePc {
		s.fail(c, config.InvalidValue("base_side", "must be 0 (coin) or 1 (pc)"))
		return
	}

	var (
		owner solana.PublicKey
		p     = &config.DepositParams{
			MaxCoin:        req.MaxCoin,
			MaxPc:          req.MaxPc,
			BaseSide:       req.BaseSide,
			OtherAmountMin: req.OtherAmountMin,
		}
		err error
	)
	if p.Programs, err = s.resolvePrograms(req.ProgramFields); err != nil {
		s.fail(c, err)
		return
	}
	if err := parseKeys(
		keyRef{"owner", req.Owner, true, &owner},
		keyRef{"market", req.Market, true, &p.Market},
		keyRef{"event_queue", req.EventQueue, true, &p.EventQueue},
		keyRef{"token_program", req.TokenProgram, false, &p.TokenProgram},
		keyRef{"user_coin", req.UserCoin, true, &p.UserCoin},
		keyRef{"user_pc", req.UserPc, true, &p.UserPc},
	); err != nil {
		s.fail(c, err)
		return
	}
	if p.TokenProgram.IsZero() {
		p.TokenProgram = solana.TokenProgramID
	}

	built, err := pool.Deposit(p, owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondTx(c, owner, built)
}

// SwapRequest is the body of POST /api/tx/swap.
type SwapRequest struct {
	ProgramFields
	Owner             string `json:"owner"`
	Market            string `json:"market"`
	EventQueue        string `json:"event_queue"`
	Bids              string `json:"bids"`
	Asks              string `json:"asks"`
	MarketCoinVault   string `json:"market_coin_vault"`
	MarketPcVault     string `json:"market_pc_vault"`
	MarketVaultSigner string `json:"market_vault_signer"`
	TokenProgram      string `json:"token_program"`
	Source            string `json:"source"`
	Destination       string `json:"destination"`
	AmountIn          uint64 `json:"amount_in"`
	MinimumOut        uint64 `json:"minimum_out"`
	WithTargetOrders  bool   `json:"with_target_orders"`
}

func (s *Server) swapTx(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, amerrors.InvalidConfig("body", err))
		return
	}

	var (
		owner solana.PublicKey
		p     = &config.SwapParams{
			AmountIn:         req.AmountIn,
			MinimumOut:       req.MinimumOut,
			WithTargetOrders: req.WithTargetOrders,
		}
		err error
	)
	if p.Programs, err = s.resolvePrograms(req.ProgramFields); err != nil {
		s.fail(c, err)
		return
	}
	if err := parseKeys(
		keyRef{"owner", req.Owner, true, &owner},
		keyRef{"market", req.Market, true, &p.Market.Market},
		keyRef{"event_queue", req.EventQueue, true, &p.Market.EventQueue},
		keyRef{"bids", req.Bids, true, &p.Market.Bids},
		keyRef{"asks", req.Asks, true, &p.Market.Asks},
		keyRef{"market_coin_vault", req.MarketCoinVault, true, &p.Market.CoinVault},
		keyRef{"market_pc_vault", req.MarketPcVault, true, &p.Market.PcVault},
		keyRef{"market_vault_signer", req.MarketVaultSigner, true, &p.Market.VaultSigner},
		keyRef{"token_program", req.TokenProgram, false, &p.TokenProgram},
		keyRef{"source", req.Source, true, &p.Source},
		keyRef{"destination", req.Destination, true, &p.Destination},
	); err != nil {
		s.fail(c, err)
		return
	}
	if p.TokenProgram.IsZero() {
		p.TokenProgram = solana.TokenProgramID
	}

	built, err := pool.Swap(p, owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondTx(c, owner, built)
}

// DecodeRequest is the body of POST /api/decode.
type DecodeRequest struct {
	Data string `json:"data"`
	// Encoding is base64 (default), hex or base58.
	Encoding  string `json:"encoding"`
	ProgramID string `json:"program_id"`
}

// DecodeResponse names the instruction and its parameters.
type DecodeResponse struct {
	Name   string `json:"name"`
	Tag    uint8  `json:"tag"`
	Params any    `json:"params"`
}

func (s *Server) decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, amerrors.InvalidConfig("body", err))
		return
	}
	data, err := decoder.ParsePayload(req.Data, req.Encoding)
	if err != nil {
		s.fail(c, amerrors.DecodeFailed("data", err))
		return
	}

	programID, err := keyField("program_id", req.ProgramID, false)
	if err != nil {
		s.fail(c, err)
		return
	}

	var ix *decoder.Instruction
	if !programID.IsZero() && s.registry.HasProgram(programID) {
		decoded, derr := s.registry.Decode(data, &programID)
		if derr != nil {
			s.fail(c, amerrors.DecodeFailed("instruction", derr))
			return
		}
		ix = decoded
	} else {
		if ix, err = amm.DecodeInstruction(data); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, DecodeResponse{Name: ix.Name, Tag: ix.Tag, Params: ix.Data})
}

func (s *Server) journalRecent(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(c, config.InvalidValue("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := s.journal.FindRecent(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) journalBySignature(c *gin.Context) {
	entry, err := s.journal.FindBySignature(c.Request.Context(), c.Param("signature"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if entry == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": errorBody{Code: "NOT_FOUND", Message: "no journal entry for signature"}})
		return
	}
	c.JSON(http.StatusOK, entry)
}
