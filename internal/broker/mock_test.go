package broker

import (
	"context"
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMockBrokerRatesIsDeterministicForSameSeed(t *testing.T) {
	ctx := context.Background()
	a := NewMockBroker(42, 10000)
	b := NewMockBroker(42, 10000)

	barsA, err := a.Rates(ctx, "EURUSD", models.H1, 50)
	require.NoError(t, err)
	barsB, err := b.Rates(ctx, "EURUSD", models.H1, 50)
	require.NoError(t, err)

	require.Len(t, barsA, 50)
	for i := range barsA {
		require.Equal(t, barsA[i].Open, barsB[i].Open)
		require.Equal(t, barsA[i].Close, barsB[i].Close)
	}
}

func TestMockBrokerRatesBarsHaveConsistentHighLow(t *testing.T) {
	ctx := context.Background()
	m := NewMockBroker(7, 10000)
	bars, err := m.Rates(ctx, "GBPUSD", models.M15, 100)
	require.NoError(t, err)

	for _, bar := range bars {
		require.GreaterOrEqual(t, bar.High, bar.Open)
		require.GreaterOrEqual(t, bar.High, bar.Close)
		require.LessOrEqual(t, bar.Low, bar.Open)
		require.LessOrEqual(t, bar.Low, bar.Close)
	}
}

func TestMockBrokerSubmitOrderTracksPosition(t *testing.T) {
	ctx := context.Background()
	m := NewMockBroker(1, 10000)

	res, err := m.SubmitOrder(ctx, OrderRequest{
		Symbol: "EURUSD", Side: models.SideBuy, Kind: OrderMarket,
		Volume: 0.1, StopLoss: 1.09, TakeProfit: 1.11,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.OrderID)
	require.Greater(t, res.FillPrice, 0.0)

	positions, err := m.Positions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.Equal(t, "EURUSD", positions[0].Symbol)
}

func TestMockBrokerRatesRejectsNonPositiveCount(t *testing.T) {
	ctx := context.Background()
	m := NewMockBroker(1, 10000)
	_, err := m.Rates(ctx, "EURUSD", models.H1, 0)
	require.Error(t, err)
}
