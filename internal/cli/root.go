package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/iqbalbaharum/betting-market-client/internal/app"
	"github.com/iqbalbaharum/betting-market-client/internal/config"
	"github.com/iqbalbaharum/betting-market-client/internal/logger"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Execute runs the command line until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "betting-market",
		Short:        "Read and trade a binary outcome betting market on Solana",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newStateCommand(),
		newOrderBookCommand(),
		newPayoutsCommand(),
		newAccountsCommand(),
		newCreateTokenAccountsCommand(),
		newTradeCommand(),
		newPayoutCommand(),
		newFreeMintCommand(),
		newJudgeCommand(),
		newJudgeOracleCommand(),
		newStrikeCommand(),
		newOracleCommand(),
		newInitMarketCommand(),
	)

	return root
}

// withApp loads configuration, wires the app and hands it to run.
func withApp(run func(ctx context.Context, a *app.App, out io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync()

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Error("failed to start", zap.Error(err))
			return err
		}
		defer a.Close()

		return run(cmd.Context(), a, cmd.OutOrStdout())
	}
}

func printJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func parseUint(name string, arg string) (*uint64, error) {
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", name, arg, types.ErrInvalidArgument)
	}
	return &v, nil
}
