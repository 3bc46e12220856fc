package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const BalanceUninitialized = "uninitialized"

// TokenAccounts derives the payer's USD, YES and NO associated token accounts.
// The market state is read first because the YES and NO mints live in it.
func (c *Client) TokenAccounts(ctx context.Context) (types.TokenAccounts, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return types.TokenAccounts{}, err
	}
	return c.tokenAccounts(state)
}

func (c *Client) tokenAccounts(state *types.MarketState) (types.TokenAccounts, error) {
	owner := c.Owner()
	accounts := types.TokenAccounts{Owner: owner}

	var err error
	if accounts.Usd, err = instructions.GetAssociatedTokenAccount(owner, c.cfg.UsdTokenMint); err != nil {
		return accounts, fmt.Errorf("usd token account: %w", err)
	}
	if accounts.Yes, err = instructions.GetAssociatedTokenAccount(owner, state.YesTokenMint); err != nil {
		return accounts, fmt.Errorf("yes token account: %w", err)
	}
	if accounts.No, err = instructions.GetAssociatedTokenAccount(owner, state.NoTokenMint); err != nil {
		return accounts, fmt.Errorf("no token account: %w", err)
	}

	return accounts, nil
}

// Balances reads the payer's token balances. Accounts that do not exist
// report BalanceUninitialized.
func (c *Client) Balances(ctx context.Context) (types.Balances, error) {
	accounts, err := c.TokenAccounts(ctx)
	if err != nil {
		return types.Balances{}, err
	}

	var balances types.Balances
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range []struct {
		account solana.PublicKey
		out     *string
	}{
		{accounts.Usd, &balances.Usd},
		{accounts.Yes, &balances.Yes},
		{accounts.No, &balances.No},
	} {
		target := target
		g.Go(func() error {
			balance, err := c.ledger.GetTokenBalance(gctx, target.account)
			if errors.Is(err, types.ErrAccountNotFound) {
				*target.out = BalanceUninitialized
				return nil
			}
			if err != nil {
				return fmt.Errorf("balance of %s: %w", target.account, err)
			}
			*target.out = balance
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.Balances{}, err
	}
	return balances, nil
}

// EnsureTokenAccounts creates the payer's YES and NO token accounts. Accounts
// that already exist are skipped.
func (c *Client) EnsureTokenAccounts(ctx context.Context) ([]solana.Signature, error) {
	state, _, err := c.current(ctx)
	if err != nil {
		return nil, err
	}

	signatures := []solana.Signature{}
	for _, mint := range []solana.PublicKey{state.YesTokenMint, state.NoTokenMint} {
		sig, err := c.createTokenAccount(ctx, mint)
		if errors.Is(err, types.ErrAlreadyExists) {
			c.logger.Info("token account already exists", zap.Stringer("mint", mint))
			continue
		}
		if err != nil {
			return signatures, err
		}
		signatures = append(signatures, sig)
	}

	return signatures, nil
}

func (c *Client) createTokenAccount(ctx context.Context, mint solana.PublicKey) (solana.Signature, error) {
	owner := c.Owner()
	ata, err := instructions.GetAssociatedTokenAccount(owner, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	_, err = c.ledger.GetAccountRaw(ctx, ata)
	if err == nil {
		return solana.Signature{}, fmt.Errorf("token account %s: %w", ata, types.ErrAlreadyExists)
	}
	if !errors.Is(err, types.ErrAccountNotFound) {
		return solana.Signature{}, err
	}

	ins, err := instructions.NewCreateAssociatedTokenAccountInstruction(owner, owner, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	return c.submit(ctx, "createTokenAccount", []solana.Instruction{ins})
}
