package structure

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

// buildUptrend constructs a clean higher-high/higher-low series so the
// swing and trend detectors have an unambiguous pattern to find.
func buildUptrend(n int, start float64) []models.Bar {
	bars := make([]models.Bar, n)
	base := time.Unix(0, 0)
	price := start

	for i := 0; i < n; i++ {
		// oscillate up with rising troughs and peaks every 10 bars
		cycle := i % 10
		var high, low float64
		if cycle < 5 {
			price += 0.0010
			high = price + 0.0005
			low = price - 0.0002
		} else {
			price -= 0.0003
			high = price + 0.0002
			low = price - 0.0005
		}

		bars[i] = models.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      high,
			Low:       low,
			Close:     price + 0.0001,
			Volume:    100 + float64(i),
		}
	}
	return bars
}

func TestSwingsRejectEdgeBars(t *testing.T) {
	bars := buildUptrend(60, 1.1000)
	swings := Swings(bars, 5)

	for _, s := range swings {
		require.GreaterOrEqual(t, s.Index, 5)
		require.LessOrEqual(t, s.Index, len(bars)-1-5)
	}
}

func TestClassifyTrendRequiresThreeOfEachKind(t *testing.T) {
	result := ClassifyTrend(nil)
	require.Equal(t, models.Consolidation, result.Direction)
	require.Zero(t, result.Strength)

	swings := []models.SwingPoint{
		{Index: 1, Price: 1.0, Kind: models.SwingHigh},
		{Index: 2, Price: 1.0, Kind: models.SwingLow},
	}
	result = ClassifyTrend(swings)
	require.Equal(t, models.Consolidation, result.Direction)
}

func TestClassifyTrendUptrend(t *testing.T) {
	swings := []models.SwingPoint{
		{Index: 1, Price: 1.10, Kind: models.SwingHigh},
		{Index: 3, Price: 1.05, Kind: models.SwingLow},
		{Index: 5, Price: 1.12, Kind: models.SwingHigh},
		{Index: 7, Price: 1.07, Kind: models.SwingLow},
		{Index: 9, Price: 1.15, Kind: models.SwingHigh},
		{Index: 11, Price: 1.09, Kind: models.SwingLow},
	}

	result := ClassifyTrend(swings)
	require.Equal(t, models.Uptrend, result.Direction)
	require.Equal(t, 0.8, result.Strength)
}

func TestBreaksAreOrderedByTimestamp(t *testing.T) {
	bars := buildUptrend(300, 1.1000)
	swings := Swings(bars, 10)
	breaks := Breaks(bars, swings, 3)

	for i := 1; i < len(breaks); i++ {
		require.True(t, breaks[i].Timestamp.After(breaks[i-1].Timestamp) || breaks[i].Timestamp.Equal(breaks[i-1].Timestamp))
	}
	for _, b := range breaks {
		require.Equal(t, models.QualityHigh, b.Quality)
		require.Greater(t, b.Strength, minQualityStrength)
	}
}

func TestAnalyzeInsufficientBarsIsDetectorError(t *testing.T) {
	_, err := Analyze("EURUSD", buildUptrend(5, 1.1), DefaultConfig())
	require.ErrorIs(t, err, ErrInsufficientBars)
}
