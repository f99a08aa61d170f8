// Package backtest implements the deterministic replay engine (spec.md
// §4.10): given a historical bar series and a precomputed list of
// signals, it replays bar-by-bar, opening and closing trades with the
// same sizing rule as the live execution loop, and computes the
// resulting performance metrics. Grounded on the teacher's
// internal/services/decision package for the shape of a single-pass
// replay over ordered input, generalized from live decisioning to a
// closed-loop historical simulation.
package backtest

import (
	"sort"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/risk"
)

// Signal is one precomputed trade proposal to open when replay reaches
// its timestamp, the unit spec.md §4.10 calls "a precomputed list of
// signals (each with a timestamp)".
type Signal struct {
	Timestamp time.Time
	Symbol    string
	Candidate models.Candidate
}

// Config tunes one backtest run.
type Config struct {
	InitialBalance float64
	Commission     float64 // fraction of notional per round-trip lot
	StartDate      time.Time
	EndDate        time.Time
	Risk           risk.Config
}

// Result is the persisted backtest artefact, per spec.md §6's schema.
type Result struct {
	Symbol         string                    `json:"symbol"`
	InitialBalance float64                   `json:"initial_balance"`
	FinalBalance   float64                   `json:"final_balance"`
	Metrics        models.PerformanceMetrics `json:"metrics"`
	Trades         []models.Trade            `json:"trades"`
	EquityCurve    []models.EquityPoint      `json:"equity_curve"`
	TotalSignals   int                       `json:"total_signals"`
	ExecutedTrades int                       `json:"executed_trades"`
}

// openTrade is a trade still awaiting a close, tracked by the replay loop.
type openTrade struct {
	entryTime    time.Time
	side         models.OrderSide
	entryPrice   float64
	stopLoss     float64
	takeProfit   float64
	size         float64
	qualityScore float64
}

// Run replays bars in timestamp order against signals, per spec.md
// §4.10's four-step algorithm. bars must already be sorted oldest
// first (the Bar Store's natural order); signals need not be
// pre-sorted, Run sorts its own copy.
func Run(symbol string, bars []models.Bar, signals []Signal, cfg Config) Result {
	sorted := make([]Signal, len(signals))
	copy(sorted, signals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	mgr := risk.NewManager(cfg.Risk, cfg.InitialBalance)

	var trades []models.Trade
	var equity []models.EquityPoint
	var open []openTrade
	peak := cfg.InitialBalance
	sigIdx := 0

	for _, bar := range bars {
		open, trades, equity, peak = closeDueTrades(open, bar, mgr, trades, equity, peak, cfg.Commission)

		for sigIdx < len(sorted) && !sorted[sigIdx].Timestamp.After(bar.Timestamp) {
			sig := sorted[sigIdx]
			sigIdx++
			if sig.Candidate.SignalType == models.Wait {
				continue
			}
			lots, _ := mgr.CalculatePositionSize(symbol, sig.Candidate.EntryPrice, sig.Candidate.StopLoss)
			side := models.SideBuy
			if sig.Candidate.SignalType == models.Sell {
				side = models.SideSell
			}
			open = append(open, openTrade{
				entryTime: bar.Timestamp, side: side,
				entryPrice: sig.Candidate.EntryPrice, stopLoss: sig.Candidate.StopLoss,
				takeProfit: sig.Candidate.TakeProfit, size: lots,
				qualityScore: float64(sig.Candidate.ConfluenceScore),
			})
		}
	}

	if len(bars) > 0 {
		last := bars[len(bars)-1]
		for _, t := range open {
			pnl := realizePnL(t, last.Close, cfg.Commission)
			mgr.RecordTradeResult(pnl)
			if mgr.Balance() > peak {
				peak = mgr.Balance()
			}
			trades = append(trades, closedTrade(t, last.Timestamp, last.Close, pnl, cfg.Commission, models.ExitEndOfBacktest))
			equity = append(equity, models.EquityPoint{Timestamp: last.Timestamp, Balance: mgr.Balance(), TradePnL: pnl})
		}
		open = nil
	}

	metrics := computeMetrics(trades, equity)

	return Result{
		Symbol: symbol, InitialBalance: cfg.InitialBalance, FinalBalance: mgr.Balance(),
		Metrics: metrics, Trades: trades, EquityCurve: equity,
		TotalSignals: len(sorted), ExecutedTrades: len(trades),
	}
}

// closeDueTrades applies step 1 of spec.md §4.10: close at stop_loss if
// the bar's low/high (by side) crosses it, close at take_profit if
// crossed, and pessimistically prefer stop_loss when both are crossed
// in the same bar.
func closeDueTrades(open []openTrade, bar models.Bar, mgr *risk.Manager, trades []models.Trade, equity []models.EquityPoint, peak, commission float64) ([]openTrade, []models.Trade, []models.EquityPoint, float64) {
	var remaining []openTrade
	for _, t := range open {
		hitSL, hitTP := crossed(t, bar)

		switch {
		case hitSL:
			pnl := realizePnL(t, t.stopLoss, commission)
			mgr.RecordTradeResult(pnl)
			if mgr.Balance() > peak {
				peak = mgr.Balance()
			}
			trades = append(trades, closedTrade(t, bar.Timestamp, t.stopLoss, pnl, commission, models.ExitStopLoss))
			equity = append(equity, models.EquityPoint{Timestamp: bar.Timestamp, Balance: mgr.Balance(), TradePnL: pnl})
		case hitTP:
			pnl := realizePnL(t, t.takeProfit, commission)
			mgr.RecordTradeResult(pnl)
			if mgr.Balance() > peak {
				peak = mgr.Balance()
			}
			trades = append(trades, closedTrade(t, bar.Timestamp, t.takeProfit, pnl, commission, models.ExitTakeProfit))
			equity = append(equity, models.EquityPoint{Timestamp: bar.Timestamp, Balance: mgr.Balance(), TradePnL: pnl})
		default:
			remaining = append(remaining, t)
		}
	}
	return remaining, trades, equity, peak
}

func crossed(t openTrade, bar models.Bar) (hitSL, hitTP bool) {
	if t.side == models.SideBuy {
		hitSL = bar.Low <= t.stopLoss
		hitTP = bar.High >= t.takeProfit
	} else {
		hitSL = bar.High >= t.stopLoss
		hitTP = bar.Low <= t.takeProfit
	}
	return hitSL, hitTP
}

// realizePnL implements spec.md §4.10 step 3's exact PnL formula.
func realizePnL(t openTrade, exit, commission float64) float64 {
	const contractSize = 100000.0
	var gross float64
	if t.side == models.SideBuy {
		gross = (exit - t.entryPrice) * t.size * contractSize
	} else {
		gross = (t.entryPrice - exit) * t.size * contractSize
	}
	return gross - commission*t.size*contractSize
}

func closedTrade(t openTrade, exitTime time.Time, exit, pnl, commission float64, reason models.ExitReason) models.Trade {
	pips := (exit - t.entryPrice) / 0.0001
	if t.side == models.SideSell {
		pips = -pips
	}
	return models.Trade{
		EntryTime: t.entryTime, ExitTime: exitTime, Side: t.side,
		EntryPrice: t.entryPrice, ExitPrice: exit, StopLoss: t.stopLoss, TakeProfit: t.takeProfit,
		Size: t.size, PnL: pnl, PnLPips: pips, Commission: commission * t.size * 100000,
		Status: models.TradeClosed, ExitReason: reason, QualityScore: t.qualityScore,
	}
}
