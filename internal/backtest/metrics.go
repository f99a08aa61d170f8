package backtest

import (
	"math"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// computeMetrics implements spec.md §4.10's metrics table exactly.
func computeMetrics(trades []models.Trade, equity []models.EquityPoint) models.PerformanceMetrics {
	var m models.PerformanceMetrics
	m.TotalTrades = len(trades)
	if m.TotalTrades == 0 {
		return m
	}

	var totalPnL, totalCommission float64
	var winDuration, lossDuration, totalDuration int64
	var winDurCount, lossDurCount int
	var totalRR float64
	var rrCount int

	currentWinStreak, currentLossStreak := 0, 0

	for _, t := range trades {
		totalPnL += t.PnL
		totalCommission += t.Commission
		dur := t.ExitTime.Sub(t.EntryTime)
		totalDuration += int64(dur)

		if t.StopLoss != t.EntryPrice {
			risk := math.Abs(t.EntryPrice - t.StopLoss)
			reward := math.Abs(t.TakeProfit - t.EntryPrice)
			if risk > 0 {
				totalRR += reward / risk
				rrCount++
			}
		}

		switch {
		case t.PnL > 0:
			m.Wins++
			m.GrossProfit += t.PnL
			if t.PnL > m.LargestWin {
				m.LargestWin = t.PnL
			}
			winDuration += int64(dur)
			winDurCount++
			currentWinStreak++
			currentLossStreak = 0
			if currentWinStreak > m.MaxConsecutiveWins {
				m.MaxConsecutiveWins = currentWinStreak
			}
		case t.PnL < 0:
			m.Losses++
			m.GrossLoss += -t.PnL
			if t.PnL < m.LargestLoss {
				m.LargestLoss = t.PnL
			}
			lossDuration += int64(dur)
			lossDurCount++
			currentLossStreak++
			currentWinStreak = 0
			if currentLossStreak > m.MaxConsecutiveLosses {
				m.MaxConsecutiveLosses = currentLossStreak
			}
		default:
			currentWinStreak, currentLossStreak = 0, 0
		}
	}

	m.WinRate = float64(m.Wins) / float64(m.TotalTrades) * 100
	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	}
	m.ExpectedPayoff = totalPnL / float64(m.TotalTrades)
	m.TotalCommission = totalCommission

	if m.Wins > 0 {
		m.AvgWin = m.GrossProfit / float64(m.Wins)
	}
	if m.Losses > 0 {
		m.AvgLoss = -m.GrossLoss / float64(m.Losses)
	}
	if rrCount > 0 {
		m.AvgRRRatio = totalRR / float64(rrCount)
	}

	m.AvgTradeDuration = avgDuration(totalDuration, m.TotalTrades)
	m.AvgWinDuration = avgDuration(winDuration, winDurCount)
	m.AvgLossDuration = avgDuration(lossDuration, lossDurCount)

	maxDD, maxDDPct := maxDrawdown(equity)
	m.MaxDrawdown = maxDD
	m.MaxDrawdownPercent = maxDDPct
	if maxDD > 0 {
		m.RecoveryFactor = totalPnL / maxDD
	}

	m.SharpeRatio = sharpeRatio(equity)

	return m
}

func avgDuration(total int64, count int) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / int64(count))
}

// maxDrawdown tracks a running peak over the equity curve and returns
// the largest absolute and percentage retracement observed.
func maxDrawdown(equity []models.EquityPoint) (abs, percent float64) {
	if len(equity) == 0 {
		return 0, 0
	}
	peak := equity[0].Balance
	for _, p := range equity {
		if p.Balance > peak {
			peak = p.Balance
		}
		dd := peak - p.Balance
		if dd > abs {
			abs = dd
			if peak > 0 {
				percent = dd / peak * 100
			}
		}
	}
	return abs, percent
}

// sharpeRatio implements spec.md's mean(returns)/stdev(returns)*sqrt(252)
// over per-equity-point returns (the fractional change in balance from
// one equity point to the next).
func sharpeRatio(equity []models.EquityPoint) float64 {
	if len(equity) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Balance
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Balance-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0
	}

	return mean / stdev * math.Sqrt(252)
}
