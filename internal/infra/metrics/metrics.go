// Package metrics exposes prometheus instrumentation for the decision
// core, served at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_events_total", Help: "Events processed by the dispatcher"},
		[]string{"kind"},
	)
	StaleDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_stale_drops_total", Help: "Market events dropped for stale or duplicate sequence numbers"},
		[]string{"instrument", "channel"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_orders_total", Help: "Entry orders placed"},
		[]string{"instrument", "side"},
	)
	HedgesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_hedges_total", Help: "Hedge orders placed"},
		[]string{"instrument", "side"},
	)
	RejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pairs_order_rejects_total", Help: "Orders rejected or refused"},
		[]string{"reason"},
	)
	Position = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "pairs_position_lots", Help: "Net position per instrument"},
		[]string{"instrument"},
	)
	RegimeState = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pairs_regime", Help: "Current divergence regime (0 neutral, 1 ETF rich, 2 future rich)"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, StaleDropsTotal, OrdersTotal, HedgesTotal, RejectsTotal, Position, RegimeState)
}

// Serve starts the /metrics endpoint in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
