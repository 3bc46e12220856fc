package market

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"go.uber.org/zap"
)

// FreeMint mints amount YES or NO tokens into the payer's token account.
func (c *Client) FreeMint(ctx context.Context, outcome types.Outcome, amount uint64) (solana.Signature, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	accounts, err := c.tokenAccounts(state)
	if err != nil {
		return solana.Signature{}, err
	}

	mint, tokenAccount := state.YesTokenMint, accounts.Yes
	if outcome == types.OutcomeNo {
		mint, tokenAccount = state.NoTokenMint, accounts.No
	}

	ins, err := instructions.NewFreeMintInstruction(&instructions.FreeMintParams{
		ProgramID:    c.cfg.ProgramID,
		Mint:         mint,
		TokenAccount: tokenAccount,
		Amount:       amount,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	return c.submit(ctx, "freeMint", []solana.Instruction{ins})
}

// JudgeManually records result (1 YES, 2 NO) on the market. The value is
// sent as given; the program rejects anything it does not accept.
func (c *Client) JudgeManually(ctx context.Context, result uint64) (solana.Signature, error) {
	if state, ok := c.Snapshot(); ok && state.Result.Decided() {
		c.logger.Warn("market already judged", zap.Stringer("result", state.Result))
	}

	ins := instructions.NewJudgeManuallyInstruction(c.cfg.ProgramID, c.cfg.MarketAccount, result)
	return c.submit(ctx, "judgeManually", []solana.Instruction{ins})
}

func (c *Client) JudgeOracle(ctx context.Context) (solana.Signature, error) {
	if c.cfg.PriceOracleAccount.IsZero() {
		return solana.Signature{}, fmt.Errorf("price oracle account is not configured: %w", types.ErrInvalidArgument)
	}

	ins := instructions.NewJudgeOracleInstruction(c.cfg.ProgramID, c.cfg.MarketAccount, c.cfg.PriceOracleAccount)
	return c.submit(ctx, "judgeOracle", []solana.Instruction{ins})
}

// SetStrikePrice sets the whole-dollar price the oracle verdict compares against.
func (c *Client) SetStrikePrice(ctx context.Context, price uint64) (solana.Signature, error) {
	ins := instructions.NewSetStrikePriceInstruction(c.cfg.ProgramID, c.cfg.MarketAccount, price)
	return c.submit(ctx, "setStrikePrice", []solana.Instruction{ins})
}

func (c *Client) OraclePrice(ctx context.Context) (types.PriceData, error) {
	if c.cfg.PriceOracleAccount.IsZero() {
		return types.PriceData{}, fmt.Errorf("price oracle account is not configured: %w", types.ErrInvalidArgument)
	}

	data, err := c.ledger.GetAccountRaw(ctx, c.cfg.PriceOracleAccount)
	if err != nil {
		return types.PriceData{}, fmt.Errorf("fetch oracle %s: %w", c.cfg.PriceOracleAccount, err)
	}

	return coder.DecodePriceAccount(data)
}

// OracleVerdict previews the result judgeOracle would record right now.
func (c *Client) OracleVerdict(ctx context.Context) (types.Result, types.PriceData, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return types.ResultUndecided, types.PriceData{}, err
	}

	price, err := c.OraclePrice(ctx)
	if err != nil {
		return types.ResultUndecided, types.PriceData{}, err
	}

	return coder.OracleVerdict(price.RawPrice, state.StrikePrice), price, nil
}
