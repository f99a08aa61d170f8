// Package risk implements the Risk Manager (spec.md §4.8): per-profile
// sizing parameters, a can_trade gate, pip-based position sizing, and
// the open-position risk tally. Grounded on the teacher's
// internal/services/risk package for the shape of a stateful risk
// checker guarding a decision pipeline, generalized from its
// percent-of-equity sizing to the spec's pip-distance sizing formula.
package risk

import (
	"sync"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// Profile names the three risk postures spec.md §4.8 names.
type Profile string

const (
	Conservative Profile = "conservative"
	ModerateProfile Profile = "moderate"
	Aggressive      Profile = "aggressive"
)

// Config is one risk profile's tunable parameters.
type Config struct {
	Profile             Profile
	MaxPositionRisk     float64 // fraction of balance risked per trade
	MaxPortfolioRisk    float64 // fraction of balance at risk across all open positions
	MaxPositions        int
	MinRRRatio          float64
	MinBalance          float64
	MaxDailyTrades      int
	PipSize             float64 // price delta representing one pip
	BrokerMaxLots       float64
	MaxDailyLossPercent float64 // of the balance at the start of the trading day
	MaxDrawdownPercent  float64 // of peak balance
	MaxConsecutiveLosses int
}

// Profiles returns the spec's three named presets.
func Profiles() map[Profile]Config {
	return map[Profile]Config{
		Conservative: {
			Profile: Conservative, MaxPositionRisk: 0.01, MaxPortfolioRisk: 0.03,
			MaxPositions: 3, MinRRRatio: 2.0, MinBalance: 100, MaxDailyTrades: 5,
			PipSize: 0.0001, BrokerMaxLots: 10,
			MaxDailyLossPercent: 0.03, MaxDrawdownPercent: 0.10, MaxConsecutiveLosses: 3,
		},
		ModerateProfile: {
			Profile: ModerateProfile, MaxPositionRisk: 0.02, MaxPortfolioRisk: 0.06,
			MaxPositions: 5, MinRRRatio: 1.5, MinBalance: 100, MaxDailyTrades: 10,
			PipSize: 0.0001, BrokerMaxLots: 20,
			MaxDailyLossPercent: 0.05, MaxDrawdownPercent: 0.15, MaxConsecutiveLosses: 5,
		},
		Aggressive: {
			Profile: Aggressive, MaxPositionRisk: 0.03, MaxPortfolioRisk: 0.10,
			MaxPositions: 8, MinRRRatio: 1.2, MinBalance: 50, MaxDailyTrades: 20,
			PipSize: 0.0001, BrokerMaxLots: 50,
			MaxDailyLossPercent: 0.08, MaxDrawdownPercent: 0.25, MaxConsecutiveLosses: 8,
		},
	}
}

const pipValuePerLot = 10.0 // standard majors simplification: 100,000 units x pip_size

// Manager owns the runtime risk state: balances, open positions, and the
// daily trade counter. Per spec.md §5, current_balance and the open
// positions map are mutated only through Manager methods (positions via
// AddPosition/RemovePosition/SeedPosition, the balance via SetBalance and
// RecordTradeResult); the execution loop never mutates them directly.
type Manager struct {
	mu sync.RWMutex

	cfg Config

	currentBalance float64
	initialBalance float64
	openPositions  map[string]models.PositionRisk
	dayCounter     int
	dailyTrades    int
	lastTradeDay   int

	peakBalance       float64
	dailyPnL          float64
	dailyStartBalance float64
	consecutiveLosses int
}

// NewManager constructs a Manager seeded with the starting balance.
func NewManager(cfg Config, initialBalance float64) *Manager {
	return &Manager{
		cfg:               cfg,
		currentBalance:    initialBalance,
		initialBalance:    initialBalance,
		openPositions:     make(map[string]models.PositionRisk),
		peakBalance:       initialBalance,
		dailyStartBalance: initialBalance,
	}
}

// RolloverDay resets the daily trade counter and daily PnL tally when
// the calendar day changes.
func (m *Manager) RolloverDay(day int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if day != m.lastTradeDay {
		m.lastTradeDay = day
		m.dailyTrades = 0
		m.dailyPnL = 0
		m.dailyStartBalance = m.currentBalance
	}
}

// RecordTradeResult applies a closed trade's realized PnL to the
// running balance, daily PnL, peak balance, and consecutive-loss streak.
func (m *Manager) RecordTradeResult(pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentBalance += pnl
	m.dailyPnL += pnl
	if m.currentBalance > m.peakBalance {
		m.peakBalance = m.currentBalance
	}
	if pnl < 0 {
		m.consecutiveLosses++
	} else if pnl > 0 {
		m.consecutiveLosses = 0
	}
}

// DailyLossPercent is today's realized loss as a fraction of the
// balance at the start of the day (0 if currently profitable).
func (m *Manager) DailyLossPercent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dailyPnL >= 0 || m.dailyStartBalance <= 0 {
		return 0
	}
	return -m.dailyPnL / m.dailyStartBalance
}

// DrawdownPercent is the current retracement from the peak balance.
func (m *Manager) DrawdownPercent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.peakBalance <= 0 || m.currentBalance >= m.peakBalance {
		return 0
	}
	return (m.peakBalance - m.currentBalance) / m.peakBalance
}

// ConsecutiveLosses is the length of the current losing streak.
func (m *Manager) ConsecutiveLosses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consecutiveLosses
}

// OpenPositionCount is the number of currently tracked open positions.
func (m *Manager) OpenPositionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.openPositions)
}

// DailyCapReached reports whether today's trade count has hit the
// configured per-day ceiling, the execution loop's step-3 short-circuit
// ("if daily cap reached, only manage open positions, then sleep").
func (m *Manager) DailyCapReached() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.MaxDailyTrades > 0 && m.dailyTrades >= m.cfg.MaxDailyTrades
}

// Positions returns a copy of every currently tracked open position.
func (m *Manager) Positions() []models.PositionRisk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PositionRisk, 0, len(m.openPositions))
	for _, p := range m.openPositions {
		out = append(out, p)
	}
	return out
}

// SetBalance refreshes the account balance from a broker sync.
func (m *Manager) SetBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBalance = balance
}

// CanTrade implements spec.md's can_trade gate.
func (m *Manager) CanTrade(symbol string, newRiskPercentage float64) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.currentBalance < m.cfg.MinBalance {
		return false, "balance below minimum threshold"
	}
	if m.cfg.MaxPositions > 0 && len(m.openPositions) >= m.cfg.MaxPositions {
		return false, "max open positions reached"
	}
	if _, exists := m.openPositions[symbol]; exists {
		return false, "symbol already has an open position"
	}

	total := newRiskPercentage
	for _, p := range m.openPositions {
		total += p.RiskPercentage
	}
	if total > m.cfg.MaxPortfolioRisk {
		return false, "portfolio risk cap would be exceeded"
	}

	if m.cfg.MaxDailyTrades > 0 && m.dailyTrades >= m.cfg.MaxDailyTrades {
		return false, "daily trade limit reached"
	}

	if m.cfg.MaxDailyLossPercent > 0 && m.dailyPnL < 0 && m.dailyStartBalance > 0 {
		if -m.dailyPnL/m.dailyStartBalance >= m.cfg.MaxDailyLossPercent {
			return false, "daily loss limit reached"
		}
	}

	if m.cfg.MaxDrawdownPercent > 0 && m.peakBalance > 0 && m.currentBalance < m.peakBalance {
		if (m.peakBalance-m.currentBalance)/m.peakBalance >= m.cfg.MaxDrawdownPercent {
			return false, "max drawdown reached"
		}
	}

	if m.cfg.MaxConsecutiveLosses > 0 && m.consecutiveLosses >= m.cfg.MaxConsecutiveLosses {
		return false, "consecutive loss limit reached"
	}

	return true, ""
}

// CalculatePositionSize implements spec.md's pip-distance sizing formula.
func (m *Manager) CalculatePositionSize(symbol string, entry, sl float64) (float64, models.PositionRisk) {
	m.mu.RLock()
	balance := m.currentBalance
	pipSize := m.cfg.PipSize
	if pipSize <= 0 {
		pipSize = 0.0001
	}
	m.mu.RUnlock()

	riskAmount := balance * m.cfg.MaxPositionRisk
	stopDistancePips := absf(entry-sl) / pipSize

	if stopDistancePips <= 0 {
		lots := 0.01
		return lots, models.PositionRisk{
			Symbol: symbol, PositionSize: lots, RiskAmount: riskAmount,
			RiskPercentage: m.cfg.MaxPositionRisk, StopDistancePips: 0,
		}
	}

	lots := round2(riskAmount / (stopDistancePips * pipValuePerLot))
	lots = clampLots(lots, 0.01, m.cfg.BrokerMaxLots)

	return lots, models.PositionRisk{
		Symbol:           symbol,
		PositionSize:     lots,
		RiskAmount:       riskAmount,
		RiskPercentage:   m.cfg.MaxPositionRisk,
		StopDistancePips: stopDistancePips,
	}
}

// AddPosition records a newly opened position's risk contribution and
// increments the daily trade counter.
func (m *Manager) AddPosition(pr models.PositionRisk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openPositions[pr.Symbol] = pr
	m.dailyTrades++
}

// RemovePosition clears a closed position's risk contribution.
func (m *Manager) RemovePosition(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.openPositions, symbol)
}

// SeedPosition seeds an existing broker position with an estimated risk
// contribution at startup, when the exact stop loss isn't known: 1.5%
// of balance per standard lot, per spec.md §4.8.
func (m *Manager) SeedPosition(symbol string, lots float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openPositions[symbol] = models.PositionRisk{
		Symbol:         symbol,
		PositionSize:   lots,
		RiskPercentage: 0.015 * lots,
	}
}

// PortfolioRisk returns the current sum of open-position risk
// percentages, the quantity spec.md §8 requires to stay <= MaxPortfolioRisk.
func (m *Manager) PortfolioRisk() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, p := range m.openPositions {
		total += p.RiskPercentage
	}
	return total
}

// Balance returns the current account balance.
func (m *Manager) Balance() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentBalance
}

// DayOf maps a timestamp to a calendar-day ordinal for RolloverDay.
func DayOf(t time.Time) int {
	y, m, d := t.Date()
	return y*372 + int(m)*31 + d
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func clampLots(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
