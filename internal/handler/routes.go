package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RouteOptions struct {
	Market         string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

func CreateRoutes(market MarketService, snapshots SnapshotReader, opts RouteOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := NewMarketHandler(market, snapshots, opts.Market, opts.Logger)

	r.Route("/market", func(r chi.Router) {
		r.Get("/", h.State)
		r.Get("/snapshot", h.CachedSnapshot)
		r.Get("/orderbook", h.OrderBook)
		r.Get("/payouts", h.Payouts)
		r.Get("/oracle", h.Oracle)
	})

	r.Route("/account", func(r chi.Router) {
		r.Get("/", h.TokenAccounts)
		r.Get("/balances", h.Balances)
		r.Post("/token-accounts", h.EnsureTokenAccounts)
	})

	r.Post("/trade", h.Trade)
	r.Post("/payout", h.Payout)
	r.Post("/free-mint", h.FreeMint)

	r.Route("/judge", func(r chi.Router) {
		r.Post("/", h.JudgeManually)
		r.Post("/oracle", h.JudgeOracle)
	})
	r.Post("/strike", h.SetStrikePrice)

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return c.Handler(r)
}
