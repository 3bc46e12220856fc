package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "betting_market"
	Subsystem = "client"
)

// Metrics are the client's Prometheus collectors.
type Metrics struct {
	Refreshes     *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	Activity      *prometheus.CounterVec
	BestBid       prometheus.Gauge
	BestAsk       prometheus.Gauge
	Spread        prometheus.Gauge
	OpenPayouts   prometheus.Gauge
	LastSlot      prometheus.Gauge
	RefreshTiming prometheus.Histogram
}

// New builds the collectors and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "refreshes_total",
			Help: "Market account reads, by outcome.",
		}, []string{"status"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "submissions_total",
			Help: "Submitted transactions, by instruction and outcome.",
		}, []string{"instruction", "status"}),
		Activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "observed_instructions_total",
			Help: "Betting market instructions seen on the transaction stream.",
		}, []string{"instruction"}),
		BestBid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "best_bid",
			Help: "Highest bid on YES.",
		}),
		BestAsk: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "best_ask",
			Help: "Lowest ask on YES.",
		}),
		Spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "spread",
			Help: "Best ask minus best bid, zero when a side is empty.",
		}),
		OpenPayouts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "payout_slots",
			Help: "Occupied payout slots in the market account.",
		}),
		LastSlot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name: "last_slot",
			Help: "Highest slot seen on the pubsub slot feed.",
		}),
		RefreshTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Subsystem: Subsystem,
			Name:    "refresh_seconds",
			Help:    "Time to fetch and decode the market account.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Refreshes,
			m.Submissions,
			m.Activity,
			m.BestBid,
			m.BestAsk,
			m.Spread,
			m.OpenPayouts,
			m.LastSlot,
			m.RefreshTiming,
		)
	}

	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}

func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
