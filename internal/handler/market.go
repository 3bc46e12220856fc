package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/iqbalbaharum/betting-market-client/internal/utils"
	"go.uber.org/zap"
)

// MarketService is the market client as seen by the HTTP surface.
type MarketService interface {
	Refresh(ctx context.Context) (*types.MarketState, error)
	OrderBook(ctx context.Context) (types.OrderBookView, error)
	Payouts(ctx context.Context) ([]types.Payout, error)
	TokenAccounts(ctx context.Context) (types.TokenAccounts, error)
	Balances(ctx context.Context) (types.Balances, error)
	EnsureTokenAccounts(ctx context.Context) ([]solana.Signature, error)
	Trade(ctx context.Context, buy bool, outcome types.Outcome, price uint64, amount uint64) (solana.Signature, error)
	Payout(ctx context.Context) (solana.Signature, error)
	FreeMint(ctx context.Context, outcome types.Outcome, amount uint64) (solana.Signature, error)
	JudgeManually(ctx context.Context, result uint64) (solana.Signature, error)
	JudgeOracle(ctx context.Context) (solana.Signature, error)
	SetStrikePrice(ctx context.Context, price uint64) (solana.Signature, error)
	OracleVerdict(ctx context.Context) (types.Result, types.PriceData, error)
}

type SnapshotReader interface {
	GetSnapshot(ctx context.Context, market string) (*types.MarketSnapshot, error)
}

type marketHandler struct {
	market    MarketService
	snapshots SnapshotReader
	account   string
	logger    *zap.Logger
}

// NewMarketHandler serves market. account is the market served from the
// snapshot cache when a request does not name one.
func NewMarketHandler(market MarketService, snapshots SnapshotReader, account string, logger *zap.Logger) *marketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &marketHandler{market: market, snapshots: snapshots, account: account, logger: logger}
}

type signatureResponse struct {
	Signature solana.Signature `json:"signature"`
}

type tradeRequest struct {
	Side    string  `json:"side"`
	Outcome string  `json:"outcome"`
	Price   *uint64 `json:"price"`
	Amount  *uint64 `json:"amount"`
}

type freeMintRequest struct {
	Outcome string  `json:"outcome"`
	Amount  *uint64 `json:"amount"`
}

type judgeRequest struct {
	Result *uint64 `json:"result"`
}

type strikeRequest struct {
	Price *uint64 `json:"price"`
}

type oracleResponse struct {
	Verdict string          `json:"verdict"`
	Price   types.PriceData `json:"price"`
}

func (h *marketHandler) respond(w http.ResponseWriter, r *http.Request, v interface{}, err error) {
	if err != nil {
		h.logger.Warn("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, err)
		return
	}
	utils.Encode(w, r, http.StatusOK, v)
}

func (h *marketHandler) submitted(w http.ResponseWriter, r *http.Request, sig solana.Signature, err error) {
	h.respond(w, r, signatureResponse{Signature: sig}, err)
}

func (h *marketHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.market.Refresh(r.Context())
	h.respond(w, r, state, err)
}

func (h *marketHandler) CachedSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeError(w, r, fmt.Errorf("snapshot cache is disabled: %w", types.ErrNoSnapshot))
		return
	}

	market := r.URL.Query().Get("market")
	if market == "" {
		market = h.account
	}
	if market == "" {
		writeError(w, r, fmt.Errorf("market is required: %w", types.ErrInvalidArgument))
		return
	}

	snapshot, err := h.snapshots.GetSnapshot(r.Context(), market)
	h.respond(w, r, snapshot, err)
}

func (h *marketHandler) OrderBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.market.OrderBook(r.Context())
	h.respond(w, r, book, err)
}

func (h *marketHandler) Payouts(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.market.Payouts(r.Context())
	h.respond(w, r, payouts, err)
}

func (h *marketHandler) Oracle(w http.ResponseWriter, r *http.Request) {
	verdict, price, err := h.market.OracleVerdict(r.Context())
	h.respond(w, r, oracleResponse{Verdict: verdict.String(), Price: price}, err)
}

func (h *marketHandler) TokenAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.market.TokenAccounts(r.Context())
	h.respond(w, r, accounts, err)
}

func (h *marketHandler) Balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.market.Balances(r.Context())
	h.respond(w, r, balances, err)
}

func (h *marketHandler) EnsureTokenAccounts(w http.ResponseWriter, r *http.Request) {
	signatures, err := h.market.EnsureTokenAccounts(r.Context())
	h.respond(w, r, signatures, err)
}

func (h *marketHandler) Trade(w http.ResponseWriter, r *http.Request) {
	req, err := utils.Decode[tradeRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	buy, err := types.ParseSide(req.Side)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := types.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, r, err)
		return
	}

	isYes := outcome == types.OutcomeYes
	params, err := instructions.FromRequest(coder.OpOfferTrade, instructions.Args{
		IsYes:  &isYes,
		Price:  req.Price,
		Amount: req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sig, err := h.market.Trade(r.Context(), buy, outcome, params.Price, params.Amount)
	h.submitted(w, r, sig, err)
}

func (h *marketHandler) Payout(w http.ResponseWriter, r *http.Request) {
	sig, err := h.market.Payout(r.Context())
	h.submitted(w, r, sig, err)
}

func (h *marketHandler) FreeMint(w http.ResponseWriter, r *http.Request) {
	req, err := utils.Decode[freeMintRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := types.ParseOutcome(req.Outcome)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params, err := instructions.FromRequest(coder.OpFreeMint, instructions.Args{Amount: req.Amount})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sig, err := h.market.FreeMint(r.Context(), outcome, params.Amount)
	h.submitted(w, r, sig, err)
}

func (h *marketHandler) JudgeManually(w http.ResponseWriter, r *http.Request) {
	req, err := utils.Decode[judgeRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := instructions.FromRequest(coder.OpJudgeManually, instructions.Args{Result: req.Result})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sig, err := h.market.JudgeManually(r.Context(), params.Result)
	h.submitted(w, r, sig, err)
}

func (h *marketHandler) JudgeOracle(w http.ResponseWriter, r *http.Request) {
	sig, err := h.market.JudgeOracle(r.Context())
	h.submitted(w, r, sig, err)
}

func (h *marketHandler) SetStrikePrice(w http.ResponseWriter, r *http.Request) {
	req, err := utils.Decode[strikeRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	params, err := instructions.FromRequest(coder.OpSetStrikePrice, instructions.Args{Price: req.Price})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sig, err := h.market.SetStrikePrice(r.Context(), params.Price)
	h.submitted(w, r, sig, err)
}
