package rank

import (
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func rec(score float64) models.Recommendation {
	return models.Recommendation{Action: models.Buy, ConfidenceScore: score}
}

func TestBoardOrdersByScoreDescending(t *testing.T) {
	b := NewBoard(10)
	b.Add("EURUSD", rec(0.5))
	b.Add("GBPUSD", rec(0.9))
	b.Add("USDJPY", rec(0.7))

	top := b.Top()
	require.Len(t, top, 3)
	require.Equal(t, "GBPUSD", top[0].Symbol)
	require.Equal(t, "USDJPY", top[1].Symbol)
	require.Equal(t, "EURUSD", top[2].Symbol)
}

func TestBoardEvictsLowestWhenOverCapacity(t *testing.T) {
	b := NewBoard(2)
	b.Add("A", rec(0.1))
	b.Add("B", rec(0.5))
	b.Add("C", rec(0.9))

	top := b.Top()
	require.Len(t, top, 2)
	require.Equal(t, "C", top[0].Symbol)
	require.Equal(t, "B", top[1].Symbol)
}

func TestBoardIgnoresWaitRecommendations(t *testing.T) {
	b := NewBoard(5)
	b.Add("EURUSD", models.Recommendation{Action: models.Wait, ConfidenceScore: 0.9})
	require.Empty(t, b.Top())
}
