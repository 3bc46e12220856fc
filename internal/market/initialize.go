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

// InitializeMarket creates a fresh market account owned by the program and
// initializes it with new YES, NO and USD accounts. The client keeps tracking
// its configured market; the returned keys describe the new one.
func (c *Client) InitializeMarket(ctx context.Context, judge solana.PublicKey) (*types.InitializedMarket, error) {
	if judge.IsZero() {
		judge = c.Owner()
	}

	marketKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}

	lamports, err := c.ledger.GetMinimumBalanceForRentExemption(ctx, coder.MarketAccountSize)
	if err != nil {
		return nil, fmt.Errorf("rent exemption: %w", err)
	}

	create, err := instructions.NewCreateMarketAccountInstruction(c.Owner(), marketKey.PublicKey(), c.cfg.ProgramID, lamports)
	if err != nil {
		return nil, err
	}

	created, err := c.submit(ctx, "createMarketAccount", []solana.Instruction{create}, marketKey)
	if err != nil {
		return nil, err
	}

	keys := make([]solana.PrivateKey, 3)
	for i := range keys {
		if keys[i], err = solana.NewRandomPrivateKey(); err != nil {
			return nil, err
		}
	}
	yesMint, noMint, usdAccount := keys[0], keys[1], keys[2]

	init, err := instructions.NewInitBettingMarketInstruction(&instructions.InitBettingMarketParams{
		ProgramID:       c.cfg.ProgramID,
		Initializer:     c.Owner(),
		Market:          marketKey.PublicKey(),
		UsdTokenMint:    c.cfg.UsdTokenMint,
		YesTokenMint:    yesMint.PublicKey(),
		NoTokenMint:     noMint.PublicKey(),
		UsdTokenAccount: usdAccount.PublicKey(),
		Judge:           judge,
	})
	if err != nil {
		return nil, err
	}

	initialized, err := c.submit(ctx, "initBettingMarket", []solana.Instruction{init}, yesMint, noMint, usdAccount)
	if err != nil {
		return nil, err
	}

	market := &types.InitializedMarket{
		Market:          marketKey.PublicKey(),
		YesTokenMint:    yesMint.PublicKey(),
		NoTokenMint:     noMint.PublicKey(),
		UsdTokenAccount: usdAccount.PublicKey(),
		Judge:           judge,
		Signatures:      []solana.Signature{created, initialized},
	}

	c.logger.Info("market initialized",
		zap.Stringer("account", market.Market),
		zap.Stringer("yesMint", market.YesTokenMint),
		zap.Stringer("noMint", market.NoTokenMint))

	return market, nil
}
