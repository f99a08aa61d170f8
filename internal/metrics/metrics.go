// Package metrics exposes the execution loop's counters and gauges via
// prometheus/client_golang, wired into SPEC_FULL.md's domain stack for
// an operator-facing health surface alongside the structured zap logs.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every metric the execution loop publishes; the
// backtest engine publishes none. One Registry is created per process.
type Registry struct {
	Scans            prometheus.Counter
	SignalsGenerated *prometheus.CounterVec
	OrdersSubmitted  *prometheus.CounterVec
	OrdersRejected   *prometheus.CounterVec
	Balance          prometheus.Gauge
	OpenPositions    prometheus.Gauge
	PortfolioRisk    prometheus.Gauge
}

// New registers every metric against a fresh prometheus.Registry.
func New() (*Registry, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		Scans: factory.NewCounter(prometheus.CounterOpts{
			Name: "smc_scans_total", Help: "Total watchlist scans performed.",
		}),
		SignalsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_signals_generated_total", Help: "Non-Wait candidates generated, by symbol.",
		}, []string{"symbol"}),
		OrdersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_orders_submitted_total", Help: "Orders submitted to the broker, by symbol.",
		}, []string{"symbol"}),
		OrdersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smc_orders_rejected_total", Help: "Orders rejected, by reason.",
		}, []string{"reason"}),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smc_account_balance", Help: "Current account balance.",
		}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smc_open_positions", Help: "Currently tracked open positions.",
		}),
		PortfolioRisk: factory.NewGauge(prometheus.GaugeOpts{
			Name: "smc_portfolio_risk_fraction", Help: "Sum of open-position risk percentages.",
		}),
	}, reg
}

// Server serves /metrics over HTTP for scraping, grounded on the
// standard promhttp.Handler pattern.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a metrics HTTP server bound to addr, not yet started.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Start runs the metrics server until the process exits or Shutdown is
// called; ListenAndServe's ErrServerClosed is swallowed as a clean stop.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
