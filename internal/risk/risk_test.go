package risk

import (
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func conservativeManager(balance float64) *Manager {
	cfg := Profiles()[Conservative]
	return NewManager(cfg, balance)
}

func TestCalculatePositionSizeStandardStopDistance(t *testing.T) {
	m := conservativeManager(10000)

	// entry-sl = 50 pips at pipSize 0.0001; riskAmount = 10000*0.01 = 100
	// lots = 100 / (50*10) = 0.20
	lots, pr := m.CalculatePositionSize("EURUSD", 1.1050, 1.1000)
	require.InDelta(t, 0.20, lots, 0.0001)
	require.InDelta(t, 100.0, pr.RiskAmount, 0.0001)
	require.InDelta(t, 50.0, pr.StopDistancePips, 0.0001)
}

func TestCalculatePositionSizeFallsBackOnZeroStopDistance(t *testing.T) {
	m := conservativeManager(10000)
	lots, pr := m.CalculatePositionSize("EURUSD", 1.1050, 1.1050)
	require.Equal(t, 0.01, lots)
	require.Equal(t, 0.0, pr.StopDistancePips)
}

func TestCalculatePositionSizeClampsToBrokerMax(t *testing.T) {
	m := conservativeManager(1_000_000)
	// riskAmount = 10000; stopDistancePips = 1; lots = 10000/(1*10) = 1000, clamped to 10
	lots, _ := m.CalculatePositionSize("EURUSD", 1.1001, 1.1000)
	require.Equal(t, 10.0, lots)
}

func TestCanTradeBlocksOnMaxPositions(t *testing.T) {
	m := conservativeManager(10000)
	for i, sym := range []string{"A", "B", "C"} {
		ok, reason := m.CanTrade(sym, 0.005)
		require.Truef(t, ok, "position %d should be allowed: %s", i, reason)
		m.AddPosition(models.PositionRisk{Symbol: sym, RiskPercentage: 0.005})
	}
	ok, reason := m.CanTrade("D", 0.005)
	require.False(t, ok)
	require.Equal(t, "max open positions reached", reason)
}

func TestCanTradeBlocksOnPortfolioRiskCap(t *testing.T) {
	m := conservativeManager(10000) // MaxPortfolioRisk = 0.03
	m.AddPosition(models.PositionRisk{Symbol: "EURUSD", RiskPercentage: 0.015})
	m.AddPosition(models.PositionRisk{Symbol: "GBPUSD", RiskPercentage: 0.014})

	ok, reason := m.CanTrade("USDJPY", 0.002) // total would be 0.031 > 0.03
	require.False(t, ok)
	require.Equal(t, "portfolio risk cap would be exceeded", reason)
}

func TestCanTradeBlocksDuplicateSymbol(t *testing.T) {
	m := conservativeManager(10000)
	m.AddPosition(models.PositionRisk{Symbol: "EURUSD", RiskPercentage: 0.005})
	ok, reason := m.CanTrade("EURUSD", 0.005)
	require.False(t, ok)
	require.Equal(t, "symbol already has an open position", reason)
}

func TestCanTradeBlocksBelowMinBalance(t *testing.T) {
	m := conservativeManager(50) // below MinBalance 100
	ok, reason := m.CanTrade("EURUSD", 0.005)
	require.False(t, ok)
	require.Equal(t, "balance below minimum threshold", reason)
}

func TestRemovePositionFreesPortfolioRisk(t *testing.T) {
	m := conservativeManager(10000)
	m.AddPosition(models.PositionRisk{Symbol: "EURUSD", RiskPercentage: 0.02})
	require.InDelta(t, 0.02, m.PortfolioRisk(), 0.0001)
	m.RemovePosition("EURUSD")
	require.InDelta(t, 0.0, m.PortfolioRisk(), 0.0001)
}

func TestRolloverDayResetsDailyTrades(t *testing.T) {
	m := conservativeManager(10000)
	m.RolloverDay(1)
	syms := []string{"A", "B", "C", "D", "E"}
	for _, sym := range syms {
		m.AddPosition(models.PositionRisk{Symbol: sym, RiskPercentage: 0})
		m.RemovePosition(sym)
	}
	ok, reason := m.CanTrade("ZZZ", 0)
	require.False(t, ok)
	require.Equal(t, "daily trade limit reached", reason)

	m.RolloverDay(2)
	ok, _ = m.CanTrade("ZZZ", 0)
	require.True(t, ok)
}

func TestSeedPositionEstimatesRiskFromLots(t *testing.T) {
	m := conservativeManager(10000)
	m.SeedPosition("EURUSD", 1.0)
	require.InDelta(t, 0.015, m.PortfolioRisk(), 0.0001)
}
