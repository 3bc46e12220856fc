package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/app"
	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/iqbalbaharum/betting-market-client/internal/utils"
	"github.com/spf13/cobra"
)

type signatureOutput struct {
	Signature solana.Signature `json:"signature"`
}

func newServeCommand() *cobra.Command {
	var (
		watch   utils.ArrayFlags
		origins utils.ArrayFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and keep the market snapshot current",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Var(&watch, "watch", "extra account to include in the transaction stream (repeatable)")
	cmd.Flags().Var(&origins, "cors-origin", "allowed CORS origin (repeatable, default any)")
	cmd.Flags().IntVar(&workers, "workers", 0, "transaction stream workers (default number of CPUs)")

	cmd.RunE = withApp(func(ctx context.Context, a *app.App, _ io.Writer) error {
		return a.Serve(ctx, app.ServeOptions{
			Watch:          watch,
			Workers:        workers,
			AllowedOrigins: origins,
		})
	})
	return cmd
}

func newStateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the decoded market account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			state, err := a.Market.Refresh(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, state)
		}),
	}
}

func newOrderBookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orderbook",
		Short: "Print the top bids and asks for YES",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			book, err := a.Market.OrderBook(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, book)
		}),
	}
}

func newPayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "payouts",
		Short: "List occupied payout slots",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			payouts, err := a.Market.Payouts(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, payouts)
		}),
	}
}

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Print the payer's token accounts and balances",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			accounts, err := a.Market.TokenAccounts(ctx)
			if err != nil {
				return err
			}
			balances, err := a.Market.Balances(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, struct {
				Accounts types.TokenAccounts `json:"accounts"`
				Balances types.Balances      `json:"balances"`
			}{accounts, balances})
		}),
	}
}

func newCreateTokenAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-token-accounts",
		Short: "Create the payer's YES and NO token accounts",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			signatures, err := a.Market.EnsureTokenAccounts(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, signatures)
		}),
	}
}

func newTradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trade <buy|sell> <yes|no> <price> <amount>",
		Short:   "Offer a trade, price in cents",
		Example: "  betting-market trade sell yes 42 1000",
		Args:    cobra.ExactArgs(4),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		buy, err := types.ParseSide(args[0])
		if err != nil {
			return err
		}
		outcome, err := types.ParseOutcome(args[1])
		if err != nil {
			return err
		}
		price, err := parseUint("price", args[2])
		if err != nil {
			return err
		}
		amount, err := parseUint("amount", args[3])
		if err != nil {
			return err
		}

		isYes := outcome == types.OutcomeYes
		params, err := instructions.FromRequest(coder.OpOfferTrade, instructions.Args{IsYes: &isYes, Price: price, Amount: amount})
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.Trade(ctx, buy, outcome, params.Price, params.Amount)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		})(cmd, args)
	}
	return cmd
}

func newPayoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "payout",
		Short: "Settle the payer's holdings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.Payout(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		}),
	}
}

func newFreeMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "free-mint <yes|no> <amount>",
		Short: "Mint test YES or NO tokens to the payer",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		outcome, err := types.ParseOutcome(args[0])
		if err != nil {
			return err
		}
		amount, err := parseUint("amount", args[1])
		if err != nil {
			return err
		}
		params, err := instructions.FromRequest(coder.OpFreeMint, instructions.Args{Amount: amount})
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.FreeMint(ctx, outcome, params.Amount)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		})(cmd, args)
	}
	return cmd
}

func newJudgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge <result>",
		Short: "Judge the market manually, 1 for YES and 2 for NO",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		result, err := parseUint("result", args[0])
		if err != nil {
			return err
		}
		params, err := instructions.FromRequest(coder.OpJudgeManually, instructions.Args{Result: result})
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.JudgeManually(ctx, params.Result)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		})(cmd, args)
	}
	return cmd
}

func newJudgeOracleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "judge-oracle",
		Short: "Judge the market against the price oracle",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.JudgeOracle(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		}),
	}
}

func newStrikeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strike <price>",
		Short: "Set the strike price in whole dollars",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		price, err := parseUint("price", args[0])
		if err != nil {
			return err
		}
		params, err := instructions.FromRequest(coder.OpSetStrikePrice, instructions.Args{Price: price})
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			sig, err := a.Market.SetStrikePrice(ctx, params.Price)
			if err != nil {
				return err
			}
			return printJSON(out, signatureOutput{sig})
		})(cmd, args)
	}
	return cmd
}

func newOracleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "oracle",
		Short: "Print the oracle price and the verdict it would produce",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			verdict, price, err := a.Market.OracleVerdict(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, struct {
				Verdict string          `json:"verdict"`
				Price   types.PriceData `json:"price"`
			}{verdict.String(), price})
		}),
	}
}

func newInitMarketCommand() *cobra.Command {
	var judge string

	cmd := &cobra.Command{
		Use:   "init-market",
		Short: "Create and initialize a new market account",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&judge, "judge", "", "judge address (default the payer)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var judgeKey solana.PublicKey
		if judge != "" {
			key, err := solana.PublicKeyFromBase58(judge)
			if err != nil {
				return fmt.Errorf("judge %q: %w", judge, types.ErrInvalidArgument)
			}
			judgeKey = key
		}

		return withApp(func(ctx context.Context, a *app.App, out io.Writer) error {
			market, err := a.Market.InitializeMarket(ctx, judgeKey)
			if err != nil {
				return err
			}
			return printJSON(out, market)
		})(cmd, args)
	}
	return cmd
}
