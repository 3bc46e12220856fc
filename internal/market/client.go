package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/metrics"
	"github.com/iqbalbaharum/betting-market-client/internal/orderbook"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"go.uber.org/zap"
)

// Ledger is the connection to the chain the market program runs on.
type Ledger interface {
	GetAccountRaw(ctx context.Context, addr solana.PublicKey) ([]byte, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	GetTokenBalance(ctx context.Context, addr solana.PublicKey) (string, error)
}

// SnapshotCache receives every refreshed snapshot.
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, market string, state *types.MarketState, book types.OrderBookView) error
}

type ClientConfig struct {
	ProgramID          solana.PublicKey
	MarketAccount      solana.PublicKey
	UsdTokenMint       solana.PublicKey
	PriceOracleAccount solana.PublicKey
	Payer              solana.PrivateKey
	Compute            instructions.ComputeUnit
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithSnapshotCache(cache SnapshotCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithLookupCache(cache LookupCache) Option {
	return func(c *Client) {
		c.lookups = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client reads and mutates one betting market. The last fetched snapshot is
// the only state shared between callers.
type Client struct {
	cfg     ClientConfig
	ledger  Ledger
	coder   *coder.BettingMarketCoder
	logger  *zap.Logger
	cache   SnapshotCache
	lookups LookupCache
	metrics *metrics.Metrics

	mutex sync.RWMutex
	state *types.MarketState
	book  types.OrderBookView
}

func NewClient(cfg ClientConfig, ledger Ledger, opts ...Option) (*Client, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required: %w", types.ErrInvalidArgument)
	}
	if cfg.ProgramID.IsZero() {
		return nil, fmt.Errorf("program id is required: %w", types.ErrInvalidArgument)
	}
	if cfg.MarketAccount.IsZero() {
		return nil, fmt.Errorf("market account is required: %w", types.ErrInvalidArgument)
	}
	if len(cfg.Payer) != 64 {
		return nil, fmt.Errorf("payer key must be 64 bytes, got %d: %w", len(cfg.Payer), types.ErrInvalidArgument)
	}

	c := &Client{
		cfg:     cfg,
		ledger:  ledger,
		coder:   coder.NewBettingMarketCoder(),
		logger:  zap.NewNop(),
		metrics: metrics.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(zap.Stringer("market", cfg.MarketAccount))

	return c, nil
}

func (c *Client) Config() ClientConfig {
	return c.cfg
}

func (c *Client) Owner() solana.PublicKey {
	return c.cfg.Payer.PublicKey()
}

// Refresh reads the market account and replaces the held snapshot.
func (c *Client) Refresh(ctx context.Context) (*types.MarketState, error) {
	start := time.Now()
	state, err := c.fetch(ctx)
	c.metrics.Refreshes.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		return nil, err
	}
	c.metrics.RefreshTiming.Observe(time.Since(start).Seconds())

	book := orderbook.Aggregate(state.BuyAmountsForYes, state.BuyAmountsForNo)

	c.mutex.Lock()
	c.state = state
	c.book = book
	c.mutex.Unlock()

	c.observe(state, book)

	if c.cache != nil {
		if err := c.cache.SetSnapshot(ctx, c.cfg.MarketAccount.String(), state, book); err != nil {
			c.logger.Warn("failed to mirror snapshot", zap.Error(err))
		}
	}

	c.logger.Debug("market refreshed",
		zap.Bool("initialized", state.Initialized),
		zap.Stringer("result", state.Result),
		zap.Uint64("strike", state.StrikePrice),
		zap.Int("bids", len(book.Bids)),
		zap.Int("asks", len(book.Asks)))

	return state, nil
}

func (c *Client) fetch(ctx context.Context) (*types.MarketState, error) {
	data, err := c.ledger.GetAccountRaw(ctx, c.cfg.MarketAccount)
	if err != nil {
		return nil, fmt.Errorf("fetch market %s: %w", c.cfg.MarketAccount, err)
	}

	state, err := c.coder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode market %s: %w", c.cfg.MarketAccount, err)
	}

	return &state, nil
}

func (c *Client) observe(state *types.MarketState, book types.OrderBookView) {
	if bid, ok := book.BestBid(); ok {
		c.metrics.BestBid.Set(bid.Price)
	}
	if ask, ok := book.BestAsk(); ok {
		c.metrics.BestAsk.Set(ask.Price)
	}
	c.metrics.Spread.Set(book.Spread)
	c.metrics.OpenPayouts.Set(float64(len(PayoutsFromState(state, c.cfg.UsdTokenMint))))
}

// Snapshot returns the last fetched state, if any.
func (c *Client) Snapshot() (*types.MarketState, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state, c.state != nil
}

// current returns the held snapshot, fetching one when none is held.
func (c *Client) current(ctx context.Context) (*types.MarketState, types.OrderBookView, error) {
	c.mutex.RLock()
	state, book := c.state, c.book
	c.mutex.RUnlock()

	if state != nil {
		return state, book, nil
	}

	state, err := c.Refresh(ctx)
	if err != nil {
		return nil, types.OrderBookView{}, fmt.Errorf("%w: %w", types.ErrNoSnapshot, err)
	}

	c.mutex.RLock()
	book = c.book
	c.mutex.RUnlock()

	return state, book, nil
}

func (c *Client) OrderBook(ctx context.Context) (types.OrderBookView, error) {
	_, book, err := c.current(ctx)
	return book, err
}

func (c *Client) Payouts(ctx context.Context) ([]types.Payout, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return PayoutsFromState(state, c.cfg.UsdTokenMint), nil
}

// PayoutsFromState lists occupied payout slots in account order.
func PayoutsFromState(state *types.MarketState, usdTokenMint solana.PublicKey) []types.Payout {
	payouts := []types.Payout{}
	for i := 0; i < types.PayoutSlots; i++ {
		user := state.PayoutUserAccounts[i]
		if user.IsZero() {
			continue
		}

		mint := state.PayoutMints[i]
		payouts = append(payouts, types.Payout{
			Index:  i,
			User:   user,
			Mint:   mint,
			Amount: state.PayoutAmounts[i],
			Token:  tokenName(state, usdTokenMint, mint),
		})
	}
	return payouts
}

func tokenName(state *types.MarketState, usdTokenMint solana.PublicKey, mint solana.PublicKey) string {
	switch {
	case !mint.IsZero() && mint.Equals(state.YesTokenMint):
		return "YES"
	case !mint.IsZero() && mint.Equals(state.NoTokenMint):
		return "NO"
	case !mint.IsZero() && mint.Equals(usdTokenMint):
		return "USD"
	default:
		return mint.String()
	}
}

// submit signs ins with the payer plus signers and sends them as one transaction.
func (c *Client) submit(ctx context.Context, name string, ins []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	sig, err := c.send(ctx, ins, signers)
	c.metrics.Submissions.WithLabelValues(name, metrics.Status(err)).Inc()
	if err != nil {
		c.logger.Error("submission failed", zap.String("instruction", name), zap.Error(err))
		return solana.Signature{}, fmt.Errorf("%s: %w", name, err)
	}

	c.logger.Info("submitted", zap.String("instruction", name), zap.Stringer("signature", sig))
	return sig, nil
}

func (c *Client) send(ctx context.Context, ins []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error) {
	blockhash, err := c.ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := instructions.BuildTransaction(ins, blockhash, c.cfg.Payer, signers, c.cfg.Compute)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.ledger.SendTransaction(ctx, tx)
}
