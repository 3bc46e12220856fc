package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/iqbalbaharum/betting-market-client/internal/generators"
	"github.com/iqbalbaharum/betting-market-client/internal/handler"
	"github.com/iqbalbaharum/betting-market-client/internal/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	reconnectDelay  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	dedupWindow     = time.Minute
)

type ServeOptions struct {
	// Watch adds accounts to the geyser transaction filter next to the program id.
	Watch          []string
	Workers        int
	AllowedOrigins []string
}

// Serve runs the HTTP surface and the push triggers until ctx is done or
// one of them fails.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	if _, err := a.Market.Refresh(ctx); err != nil {
		a.logger.Warn("initial refresh failed", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.serveHTTP(gctx, opts)
	})

	if a.cfg.RpcWsUrl != "" {
		g.Go(func() error {
			return a.watchMarket(gctx)
		})
	}

	if a.cfg.Grpc.Addr != "" {
		g.Go(func() error {
			return a.streamActivity(gctx, opts)
		})
	}

	return g.Wait()
}

func (a *App) serveHTTP(ctx context.Context, opts ServeOptions) error {
	var snapshots handler.SnapshotReader
	if a.snapshots != nil {
		snapshots = a.snapshots
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", a.cfg.Port),
		Handler: handler.CreateRoutes(a.Market, snapshots, handler.RouteOptions{
			Market:         a.cfg.MarketAccount.String(),
			AllowedOrigins: opts.AllowedOrigins,
			Gatherer:       a.registry,
			Logger:         a.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		a.shutdown(server, shutdownTimeout)
	}()

	a.logger.Info("server running", zap.Int("port", a.cfg.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdown drains server, giving in-flight requests up to timeout.
func (a *App) shutdown(server *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		a.logger.Warn("server shutdown", zap.Error(err))
	}
}

// watchMarket refreshes on every websocket change notification of the market
// account and reconnects when the connection drops.
func (a *App) watchMarket(ctx context.Context) error {
	for {
		err := a.watchOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Warn("market subscription lost", zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (a *App) watchOnce(ctx context.Context) error {
	ws, err := rpc.NewWsRpc(a.cfg.RpcWsUrl, a.logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	accounts := make(chan rpc.AccountNotification, 16)
	slots := make(chan rpc.SlotNotification, 16)

	if err := ws.SubscribeToAccount(a.cfg.MarketAccount, accounts); err != nil {
		return err
	}
	if err := ws.SubscribeToSlot(slots); err != nil {
		return err
	}

	var slot uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ws.Done():
			return errors.New("websocket closed")
		case n := <-accounts:
			a.logger.Debug("market account changed", zap.Uint64("slot", n.Slot), zap.Int("bytes", len(n.Data)))
			if _, err := a.Market.Refresh(ctx); err != nil {
				a.logger.Error("refresh failed", zap.Error(err))
			}
		case s := <-slots:
			slot = a.observeSlot(slot, s)
		}
	}
}

// observeSlot publishes the highest slot seen so far and returns it.
func (a *App) observeSlot(last uint64, s rpc.SlotNotification) uint64 {
	if s.Slot <= last {
		return last
	}
	a.metrics.LastSlot.Set(float64(s.Slot))
	return s.Slot
}

// streamActivity feeds program transactions from geyser to a worker pool.
// A signature is handled once per dedup window.
func (a *App) streamActivity(ctx context.Context, opts ServeOptions) error {
	client, err := generators.GrpcConnect(a.cfg.Grpc.Addr, a.cfg.Grpc.InsecureConnection, a.logger)
	if err != nil {
		return err
	}
	defer client.CloseConnection()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	txChannel := make(chan generators.GeyserResponse)

	var (
		wg        sync.WaitGroup
		processed sync.Map
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for response := range txChannel {
				signature := response.MempoolTxns.Signature
				if _, exists := processed.LoadOrStore(signature, true); exists {
					continue
				}
				time.AfterFunc(dedupWindow, func() {
					processed.Delete(signature)
				})

				if _, err := a.Market.ProcessActivity(ctx, response); err != nil {
					a.logger.Warn("activity not processed", zap.String("signature", signature), zap.Error(err))
				}
			}
		}()
	}

	include := append([]string{a.cfg.ProgramID.String()}, opts.Watch...)
	err = client.GrpcSubscribeByAddresses(ctx, "geyser", a.cfg.Grpc.Token, include, nil, txChannel)
	wg.Wait()

	return err
}
