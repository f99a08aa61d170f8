package execution

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/broker"
	"github.com/Maryorwahmi/smc-forez/internal/errs"
	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"github.com/Maryorwahmi/smc-forez/internal/metrics"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/quality"
	"github.com/Maryorwahmi/smc-forez/internal/risk"
	"go.uber.org/zap"
)

// SymbolConfig bundles one watchlist entry's pipeline settings with its
// pip size, needed by the order-building step.
type SymbolConfig struct {
	Symbol   string
	Pipeline PipelineConfig
	PipSize  float64
}

// Config is the live execution loop's full set of tunables, per
// spec.md §4.9.
type Config struct {
	TickInterval time.Duration
	ChunkSize    time.Duration // shutdown-flag check granularity, <= 10s
	Watchlist    []SymbolConfig
	Quality      quality.Config
	Metrics      *metrics.Registry // optional; nil disables instrumentation
}

// Loop runs the spec's single-threaded cooperative trading cycle: a
// periodic tick that refreshes balance, manages open positions, and
// scans the watchlist through the analysis pipeline, quality filter,
// and risk manager before submitting orders. Grounded on the teacher's
// internal/libs/worker ticker/quit-channel idiom, generalized from a
// concurrent pool to a single goroutine that owns all core state; only
// broker I/O and the shutdown signal ever block it.
type Loop struct {
	store  *barstore.Store
	broker broker.Broker
	risk   *risk.Manager
	guard  *risk.Guard
	log    *logger.Logger
	cfg    Config

	mu          sync.Mutex
	seenSignals map[string]bool

	shutdown atomic.Bool
	paused   atomic.Bool
}

// NewLoop wires a Loop's dependencies. The Loop registers itself as the
// Guard's ExecutorController so a risk violation can pause it or flatten
// every open position.
func NewLoop(store *barstore.Store, b broker.Broker, riskMgr *risk.Manager, guard *risk.Guard, log *logger.Logger, cfg Config) *Loop {
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > 10*time.Second {
		cfg.ChunkSize = 10 * time.Second
	}
	l := &Loop{
		store: store, broker: b, risk: riskMgr, guard: guard, log: log, cfg: cfg,
		seenSignals: make(map[string]bool),
	}
	if guard != nil {
		guard.SetExecutor(l)
	}
	return l
}

// RequestShutdown sets the cooperative shutdown flag; Run exits at the
// next chunked sleep boundary rather than mid-tick.
func (l *Loop) RequestShutdown() {
	l.shutdown.Store(true)
}

// Pause implements risk.ExecutorController: the loop keeps running
// (balance refresh, position management) but skips new entries.
func (l *Loop) Pause() error {
	l.paused.Store(true)
	return nil
}

// Resume implements risk.ExecutorController.
func (l *Loop) Resume() error {
	l.paused.Store(false)
	return nil
}

// Paused reports whether the loop is currently skipping new entries,
// for a host-side status snapshot.
func (l *Loop) Paused() bool {
	return l.paused.Load()
}

// Balance returns the Risk Manager's last-known account balance, for a
// host-side status snapshot.
func (l *Loop) Balance() float64 {
	return l.risk.Balance()
}

// Positions returns the Risk Manager's tracked open positions, for a
// host-side status snapshot.
func (l *Loop) Positions() []models.PositionRisk {
	return l.risk.Positions()
}

// CloseAllPositions implements risk.ExecutorController: flattens every
// tracked open position with an opposite-side market order, since the
// Broker interface has no dedicated close-position call.
func (l *Loop) CloseAllPositions() error {
	ctx := context.Background()
	positions, err := l.broker.Positions(ctx)
	if err != nil {
		return err
	}
	for _, p := range positions {
		side := models.SideSell
		if p.Side == models.SideSell {
			side = models.SideBuy
		}
		_, err := l.broker.SubmitOrder(ctx, broker.OrderRequest{
			Symbol: p.Symbol, Side: side, Kind: broker.OrderMarket,
			Volume: p.Volume, Comment: "guard: close all positions",
		})
		if err != nil && l.log != nil {
			l.log.Warn("close-all order failed", zap.String("symbol", p.Symbol), zap.Error(err))
		}
		l.risk.RemovePosition(p.Symbol)
	}
	return nil
}

// Run executes the tick loop until ctx is cancelled or RequestShutdown
// is called, sleeping in cfg.ChunkSize slices so shutdown is never
// delayed by more than one chunk.
func (l *Loop) Run(ctx context.Context) error {
	if len(l.cfg.Watchlist) == 0 {
		return fmt.Errorf("execution: empty watchlist")
	}

	interval := l.cfg.TickInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	for {
		if l.shutdown.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := l.tick(ctx); err != nil && l.log != nil {
			l.log.Error("tick failed", zap.Error(err))
		}

		if err := l.sleepChunked(ctx, interval); err != nil {
			return err
		}
	}
}

func (l *Loop) sleepChunked(ctx context.Context, d time.Duration) error {
	remaining := d
	for remaining > 0 {
		if l.shutdown.Load() {
			return nil
		}
		chunk := l.cfg.ChunkSize
		if chunk > remaining {
			chunk = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(chunk):
		}
		remaining -= chunk
	}
	return nil
}

// tick runs the spec.md §4.9 loop body: day rollover, balance refresh,
// position management, the daily-cap and pause short-circuits, then a
// per-symbol scan.
func (l *Loop) tick(ctx context.Context) error {
	now := time.Now()
	l.risk.RolloverDay(risk.DayOf(now))

	account, err := l.broker.AccountInfo(ctx)
	if err != nil {
		return errs.New(errs.KindBroker, "tick.account_info", "", err)
	}
	l.risk.SetBalance(account.Balance)

	l.managePositions(ctx)

	if m := l.cfg.Metrics; m != nil {
		m.Balance.Set(account.Balance)
		m.OpenPositions.Set(float64(l.risk.OpenPositionCount()))
		m.PortfolioRisk.Set(l.risk.PortfolioRisk())
	}

	if l.risk.DailyCapReached() {
		return nil
	}
	if l.paused.Load() {
		return nil
	}

	for _, sym := range l.cfg.Watchlist {
		if l.cfg.Metrics != nil {
			l.cfg.Metrics.Scans.Inc()
		}
		if err := l.scanSymbol(ctx, sym, now); err != nil {
			if l.log != nil {
				l.log.Warn("symbol scan failed", zap.String("symbol", sym.Symbol), zap.Error(err))
			}
		}
	}

	if l.guard != nil {
		l.guard.Evaluate()
	}
	return nil
}

// managePositions reconciles the Risk Manager's open-position tally
// against a fresh broker read. Full trade-management logic (trailing
// stops, partial closes) is out of scope; this keeps the risk tally
// from drifting when a position closes out-of-band (stopped out, hit
// take-profit) between ticks.
func (l *Loop) managePositions(ctx context.Context) {
	positions, err := l.broker.Positions(ctx)
	if err != nil {
		if l.log != nil {
			l.log.Warn("positions refresh failed", zap.Error(err))
		}
		return
	}
	live := make(map[string]bool, len(positions))
	for _, p := range positions {
		live[p.Symbol] = true
	}
	for _, p := range l.risk.Positions() {
		if !live[p.Symbol] {
			l.risk.RemovePosition(p.Symbol)
		}
	}
}

// scanSymbol runs one symbol through the analysis pipeline, quality
// filter, and risk manager, submitting an order when every gate passes.
func (l *Loop) scanSymbol(ctx context.Context, sym SymbolConfig, asOf time.Time) error {
	tick, err := l.broker.LastTick(ctx, sym.Symbol)
	if err != nil {
		return errs.New(errs.KindBroker, "scan.last_tick", sym.Symbol, err)
	}
	currentPrice := (tick.Bid + tick.Ask) / 2

	rec, err := RunPipeline(l.store, sym.Symbol, currentPrice, asOf, sym.Pipeline, func(derr error) {
		if l.log != nil {
			l.log.Warn("detector error", zap.String("symbol", sym.Symbol), zap.Error(derr))
		}
	})
	if err != nil {
		return err
	}
	if rec.Action == models.Wait {
		return nil
	}
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.SignalsGenerated.WithLabelValues(sym.Symbol).Inc()
	}

	result := quality.Evaluate(rec, l.cfg.Quality)
	if ok, _ := quality.ShouldExecuteSignal(result, rec); !ok {
		return nil
	}

	id := signalID(sym.Symbol, rec.EntryDetails)
	l.mu.Lock()
	dup := l.seenSignals[id]
	if !dup {
		l.seenSignals[id] = true
	}
	l.mu.Unlock()
	if dup {
		return nil
	}

	lots, posRisk := l.risk.CalculatePositionSize(sym.Symbol, rec.EntryDetails.EntryPrice, rec.EntryDetails.StopLoss)

	can, blockReason := l.risk.CanTrade(sym.Symbol, posRisk.RiskPercentage)
	if !can {
		return errs.New(errs.KindRiskBlock, "scan.can_trade", sym.Symbol, fmt.Errorf("%s", blockReason))
	}

	info, err := l.broker.SymbolInfo(ctx, sym.Symbol)
	if err != nil {
		return errs.New(errs.KindBroker, "scan.symbol_info", sym.Symbol, err)
	}

	req, _, err := buildOrderRequest(sym.Symbol, rec.EntryDetails, tick, info, sym.PipSize)
	if err != nil {
		return errs.New(errs.KindSignal, "scan.build_order", sym.Symbol, err)
	}
	req.Volume = lots

	res, err := l.broker.SubmitOrder(ctx, req)
	if err != nil {
		if l.cfg.Metrics != nil {
			l.cfg.Metrics.OrdersRejected.WithLabelValues("broker_error").Inc()
		}
		return classifyAndLog(l.log, sym.Symbol, err)
	}
	if l.cfg.Metrics != nil {
		l.cfg.Metrics.OrdersSubmitted.WithLabelValues(sym.Symbol).Inc()
	}

	posRisk.Symbol = sym.Symbol
	l.risk.AddPosition(posRisk)

	if l.log != nil {
		l.log.Info("order submitted",
			zap.String("symbol", sym.Symbol), zap.String("order_id", res.OrderID),
			zap.Float64("fill_price", res.FillPrice), zap.Float64("volume", lots))
	}
	return nil
}

// classifyAndLog logs a broker error without retrying it, per spec.md
// §4.9's "broker errors are classified, logged, and never retried
// automatically" rule, and returns it wrapped for the caller.
func classifyAndLog(log *logger.Logger, symbol string, err error) error {
	if log != nil {
		code := errs.BrokerUnknown
		if be, ok := err.(*errs.BrokerError); ok {
			code = be.Code
		}
		log.Error("order submission rejected",
			zap.String("symbol", symbol), zap.String("broker_code", string(code)), zap.Error(err))
	}
	return errs.New(errs.KindBroker, "scan.submit_order", symbol, err)
}
