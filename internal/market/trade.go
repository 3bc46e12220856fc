package market

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

func (c *Client) tradeAccounts(ctx context.Context) (*instructions.TradeAccounts, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return nil, err
	}

	user, err := c.tokenAccounts(state)
	if err != nil {
		return nil, err
	}

	return &instructions.TradeAccounts{
		ProgramID:    c.cfg.ProgramID,
		Market:       c.cfg.MarketAccount,
		UsdTokenMint: c.cfg.UsdTokenMint,
		State:        state,
		User:         user,
	}, nil
}

// OfferTrade places a buy of amount YES (isYes) or NO tokens at price cents.
func (c *Client) OfferTrade(ctx context.Context, isYes bool, price uint64, amount uint64) (solana.Signature, error) {
	if err := ValidatePrice(price); err != nil {
		return solana.Signature{}, err
	}

	accounts, err := c.tradeAccounts(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	ins, err := instructions.NewOfferTradeInstruction(&instructions.OfferTradeParams{
		TradeAccounts: *accounts,
		IsYes:         isYes,
		Price:         price,
		Amount:        amount,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	return c.submit(ctx, "offerTrade", []solana.Instruction{ins})
}

func (c *Client) BuyYes(ctx context.Context, price uint64, amount uint64) (solana.Signature, error) {
	return c.OfferTrade(ctx, true, price, amount)
}

// SellYes at p is a NO buy at 100-p.
func (c *Client) SellYes(ctx context.Context, price uint64, amount uint64) (solana.Signature, error) {
	if err := ValidatePrice(price); err != nil {
		return solana.Signature{}, err
	}
	return c.OfferTrade(ctx, false, types.MaxPrice-price, amount)
}

func (c *Client) BuyNo(ctx context.Context, price uint64, amount uint64) (solana.Signature, error) {
	return c.OfferTrade(ctx, false, price, amount)
}

// SellNo at p is a YES buy at 100-p.
func (c *Client) SellNo(ctx context.Context, price uint64, amount uint64) (solana.Signature, error) {
	if err := ValidatePrice(price); err != nil {
		return solana.Signature{}, err
	}
	return c.OfferTrade(ctx, true, types.MaxPrice-price, amount)
}

// Trade dispatches a side and outcome to the matching buy or sell.
func (c *Client) Trade(ctx context.Context, buy bool, outcome types.Outcome, price uint64, amount uint64) (solana.Signature, error) {
	switch {
	case buy && outcome == types.OutcomeYes:
		return c.BuyYes(ctx, price, amount)
	case buy:
		return c.BuyNo(ctx, price, amount)
	case outcome == types.OutcomeYes:
		return c.SellYes(ctx, price, amount)
	default:
		return c.SellNo(ctx, price, amount)
	}
}

// Payout settles the payer's holdings against the market.
func (c *Client) Payout(ctx context.Context) (solana.Signature, error) {
	accounts, err := c.tradeAccounts(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	ins, err := instructions.NewPayoutInstruction(accounts)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.submit(ctx, "payout", []solana.Instruction{ins})
}
