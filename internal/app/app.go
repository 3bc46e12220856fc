package app

import (
	"context"
	"fmt"

	"github.com/iqbalbaharum/betting-market-client/internal/adapter"
	"github.com/iqbalbaharum/betting-market-client/internal/config"
	"github.com/iqbalbaharum/betting-market-client/internal/instructions"
	"github.com/iqbalbaharum/betting-market-client/internal/market"
	"github.com/iqbalbaharum/betting-market-client/internal/metrics"
	"github.com/iqbalbaharum/betting-market-client/internal/rpc"
	"github.com/iqbalbaharum/betting-market-client/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired components of one configured market.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	redis     *redis.Client
	snapshots *storage.SnapshotStorage

	Market *market.Client
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.metrics = metrics.New(a.registry)
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var rpcOpts []rpc.Option
	if cfg.SubmitRoute == config.SubmitRouteJito {
		rpcOpts = append(rpcOpts, rpc.WithJito(cfg.BlockEngineUrl, nil))
	}
	ledger := rpc.NewClient(cfg.RpcHttpUrl, rpcOpts...)

	opts := []market.Option{
		market.WithLogger(logger),
		market.WithMetrics(a.metrics),
	}

	if cfg.RedisAddr != "" {
		client, err := adapter.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.redis = client
		a.snapshots = storage.NewSnapshotStorage(client, cfg.SnapshotTTL)
		opts = append(opts,
			market.WithSnapshotCache(a.snapshots),
			market.WithLookupCache(storage.NewLookupTableStorage(client, storage.DefaultLookupTTL)))
		logger.Info("redis mirror enabled", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	}

	client, err := market.NewClient(market.ClientConfig{
		ProgramID:          cfg.ProgramID,
		MarketAccount:      cfg.MarketAccount,
		UsdTokenMint:       cfg.UsdTokenMint,
		PriceOracleAccount: cfg.PriceOracleAccount,
		Payer:              cfg.Payer,
		Compute: instructions.ComputeUnit{
			Units:         cfg.ComputeUnitLimit,
			MicroLamports: cfg.ComputeUnitPrice,
		},
	}, ledger, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("market client: %w", err)
	}
	a.Market = client

	return a, nil
}

func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
