package barstore

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func mkBar(t time.Time, c float64) models.Bar {
	return models.Bar{Timestamp: t, Open: c, High: c, Low: c, Close: c, Volume: 1}
}

func TestAppendRejectsNonMonotone(t *testing.T) {
	s := New()
	base := time.Unix(1000, 0)

	require.NoError(t, s.Append("EURUSD", models.M15, mkBar(base, 1.1)))
	require.NoError(t, s.Append("EURUSD", models.M15, mkBar(base.Add(time.Minute), 1.2)))

	err := s.Append("EURUSD", models.M15, mkBar(base, 1.3))
	require.ErrorIs(t, err, models.ErrNonMonotoneBar)

	err = s.Append("EURUSD", models.M15, mkBar(base.Add(time.Minute), 1.3))
	require.ErrorIs(t, err, models.ErrNonMonotoneBar)
}

func TestWindowEndingAt(t *testing.T) {
	s := New()
	base := time.Unix(0, 0)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append("EURUSD", models.M5, mkBar(base.Add(time.Duration(i)*time.Minute), float64(i))))
	}

	// asking for 3 bars ending at bar index 5 (t=5min) returns bars 3,4,5
	window := s.WindowEndingAt("EURUSD", models.M5, base.Add(5*time.Minute).UnixNano(), 3)
	require.Len(t, window, 3)
	require.Equal(t, 3.0, window[0].Close)
	require.Equal(t, 5.0, window[2].Close)

	// window larger than available history is clamped, not padded
	window = s.WindowEndingAt("EURUSD", models.M5, base.Add(9*time.Minute).UnixNano(), 100)
	require.Len(t, window, 10)

	// disjoint symbol/timeframe keys never see each other's bars
	require.Empty(t, s.WindowEndingAt("GBPUSD", models.M5, base.Add(5*time.Minute).UnixNano(), 3))
	require.Empty(t, s.WindowEndingAt("EURUSD", models.H1, base.Add(5*time.Minute).UnixNano(), 3))
}

func TestLatestAndAll(t *testing.T) {
	s := New()
	base := time.Unix(0, 0)

	_, ok := s.Latest("EURUSD", models.H1)
	require.False(t, ok)

	require.NoError(t, s.Append("EURUSD", models.H1, mkBar(base, 1)))
	require.NoError(t, s.Append("EURUSD", models.H1, mkBar(base.Add(time.Hour), 2)))

	last, ok := s.Latest("EURUSD", models.H1)
	require.True(t, ok)
	require.Equal(t, 2.0, last.Close)

	require.Len(t, s.All("EURUSD", models.H1), 2)
}
