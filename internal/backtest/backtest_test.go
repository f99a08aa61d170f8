package backtest

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/risk"
	"github.com/stretchr/testify/require"
)

func hourlyBars(n int, start float64, step float64) []models.Bar {
	base := time.Unix(0, 0).UTC()
	bars := make([]models.Bar, n)
	price := start
	for i := 0; i < n; i++ {
		price += step
		bars[i] = models.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price, High: price + 0.0015, Low: price - 0.0015, Close: price,
			Volume: 100,
		}
	}
	return bars
}

func testConfig() Config {
	return Config{
		InitialBalance: 10000, Commission: 0.00002,
		Risk: risk.Profiles()[risk.Conservative],
	}
}

func TestRunClosesAtTakeProfitWhenCrossed(t *testing.T) {
	bars := hourlyBars(10, 1.1000, 0.0010) // climbs steadily
	candidate, err := models.NewCandidate(models.Buy, 1.1010, 1.0990, 1.1030, 1.0, 10, nil, models.H1)
	require.NoError(t, err)

	signals := []Signal{{Timestamp: bars[0].Timestamp, Symbol: "EURUSD", Candidate: candidate}}

	res := Run("EURUSD", bars, signals, testConfig())
	require.Equal(t, 1, res.ExecutedTrades)
	require.Equal(t, models.ExitTakeProfit, res.Trades[0].ExitReason)
	require.Greater(t, res.Trades[0].PnL, 0.0)
}

func TestRunClosesAtStopLossWhenCrossed(t *testing.T) {
	bars := hourlyBars(10, 1.1000, -0.0010) // falls steadily
	candidate, err := models.NewCandidate(models.Buy, 1.1010, 1.0990, 1.1040, 1.0, 10, nil, models.H1)
	require.NoError(t, err)

	signals := []Signal{{Timestamp: bars[0].Timestamp, Symbol: "EURUSD", Candidate: candidate}}

	res := Run("EURUSD", bars, signals, testConfig())
	require.Equal(t, 1, res.ExecutedTrades)
	require.Equal(t, models.ExitStopLoss, res.Trades[0].ExitReason)
	require.Less(t, res.Trades[0].PnL, 0.0)
}

func TestRunClosesRemainingTradesAtEndOfBacktest(t *testing.T) {
	bars := hourlyBars(5, 1.1000, 0.0001) // small moves, never reaches SL/TP
	candidate, err := models.NewCandidate(models.Buy, 1.1001, 1.0950, 1.1100, 1.0, 10, nil, models.H1)
	require.NoError(t, err)

	signals := []Signal{{Timestamp: bars[0].Timestamp, Symbol: "EURUSD", Candidate: candidate}}

	res := Run("EURUSD", bars, signals, testConfig())
	require.Equal(t, 1, res.ExecutedTrades)
	require.Equal(t, models.ExitEndOfBacktest, res.Trades[0].ExitReason)
}

func TestRunIsDeterministicAcrossRepeatedReplays(t *testing.T) {
	bars := hourlyBars(30, 1.1000, 0.0005)
	candidate, err := models.NewCandidate(models.Buy, 1.1010, 1.0990, 1.1040, 1.0, 10, nil, models.H1)
	require.NoError(t, err)
	signals := []Signal{{Timestamp: bars[2].Timestamp, Symbol: "EURUSD", Candidate: candidate}}

	a := Run("EURUSD", bars, signals, testConfig())
	b := Run("EURUSD", bars, signals, testConfig())

	require.Equal(t, a.Metrics, b.Metrics)
	require.Equal(t, a.FinalBalance, b.FinalBalance)
}

func TestComputeMetricsWinRateAndProfitFactor(t *testing.T) {
	trades := []models.Trade{
		{EntryTime: time.Unix(0, 0), ExitTime: time.Unix(3600, 0), PnL: 100, EntryPrice: 1.10, StopLoss: 1.09, TakeProfit: 1.12},
		{EntryTime: time.Unix(0, 0), ExitTime: time.Unix(3600, 0), PnL: -50, EntryPrice: 1.10, StopLoss: 1.09, TakeProfit: 1.12},
		{EntryTime: time.Unix(0, 0), ExitTime: time.Unix(3600, 0), PnL: 50, EntryPrice: 1.10, StopLoss: 1.09, TakeProfit: 1.12},
	}
	m := computeMetrics(trades, nil)

	require.InDelta(t, 200.0/3, m.WinRate, 0.01)
	require.InDelta(t, 150.0/50.0, m.ProfitFactor, 1e-9)
	require.InDelta(t, 100.0/3, m.ExpectedPayoff, 1e-9)
}
