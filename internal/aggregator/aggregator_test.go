package aggregator

import (
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func buyCandidate(tf models.Timeframe, score int, strength models.SignalStrength, rr float64, factors ...string) models.Candidate {
	cfs := make([]models.ConfluenceFactor, 0, len(factors))
	for _, f := range factors {
		cfs = append(cfs, models.ConfluenceFactor{Factor: f, Score: 1})
	}
	return models.Candidate{
		SignalType:        models.Buy,
		SignalDirection:   models.DirBullish,
		ConfluenceScore:   score,
		ConfluenceFactors: cfs,
		Strength:          strength,
		RRRatio:           rr,
		Timeframe:         tf,
	}
}

func TestAggregateAlignedUptrendProducesBuy(t *testing.T) {
	perTF := []models.TFConfluence{
		{Timeframe: models.H4, Candidate: buyCandidate(models.H4, 8, models.Strong, 2.0, "bos_confirmation"), Priority: 3},
		{Timeframe: models.H1, Candidate: buyCandidate(models.H1, 9, models.Strong, 2.2, "bos_confirmation"), Priority: 2},
		{Timeframe: models.M15, Candidate: buyCandidate(models.M15, 7, models.Moderate, 1.8, "bos_confirmation"), Priority: 1},
	}

	rec := Aggregate(perTF, models.BiasNeutral, DefaultConfig())
	require.Equal(t, models.Buy, rec.Action)
	require.Equal(t, models.Uptrend, rec.TrendDirection)
	require.True(t, rec.TrendAligned)
	require.Equal(t, models.M15, rec.EntryTimeframe)
	require.Equal(t, 3, rec.SignalConfluence.ConfluenceCount)
}

func TestAggregateBlocksCounterTrendBreakout(t *testing.T) {
	perTF := []models.TFConfluence{
		{Timeframe: models.H4, Candidate: models.Candidate{SignalType: models.Wait, SignalDirection: models.DirBearish, Timeframe: models.H4}, Priority: 3},
		{Timeframe: models.H1, Candidate: models.Candidate{SignalType: models.Wait, SignalDirection: models.DirBearish, Timeframe: models.H1}, Priority: 2},
		{Timeframe: models.M15, Candidate: buyCandidate(models.M15, 4, models.Weak, 1.5, "bos_confirmation"), Priority: 1},
	}

	rec := Aggregate(perTF, models.BiasNeutral, DefaultConfig())
	require.Equal(t, models.Downtrend, rec.TrendDirection)
	require.Equal(t, models.Wait, rec.Action)
}

func TestAggregateAllowsPullbackWithEnoughConfluence(t *testing.T) {
	// Only H4 carries trend weight (bearish => Downtrend). The three
	// pullback candidates sit on timeframes outside the weighted-trend
	// set (M30/M5/M1), so they drive confluence_count without flipping
	// the overall weighted trend.
	perTF := []models.TFConfluence{
		{Timeframe: models.H4, Candidate: models.Candidate{SignalType: models.Wait, SignalDirection: models.DirBearish, Timeframe: models.H4}, Priority: 3},
		{Timeframe: "M30", Candidate: buyCandidate("M30", 8, models.Strong, 2.0, "valid_poi"), Priority: 0.75},
		{Timeframe: models.M5, Candidate: buyCandidate(models.M5, 7, models.Moderate, 1.8, "valid_poi"), Priority: 0.5},
		{Timeframe: models.M1, Candidate: buyCandidate(models.M1, 6, models.Moderate, 1.6, "valid_poi"), Priority: 0.25},
	}

	rec := Aggregate(perTF, models.BiasNeutral, DefaultConfig())
	require.Equal(t, models.Downtrend, rec.TrendDirection)
	require.Equal(t, models.Buy, rec.Action)
}

func TestAggregateConsolidationRequiresConfluenceOrConfidence(t *testing.T) {
	perTF := []models.TFConfluence{
		{Timeframe: models.H4, Candidate: models.Candidate{SignalType: models.Wait, Timeframe: models.H4}, Priority: 3},
		{Timeframe: models.H1, Candidate: buyCandidate(models.H1, 7, models.Moderate, 1.8, "valid_poi"), Priority: 2},
	}

	rec := Aggregate(perTF, models.BiasNeutral, DefaultConfig())
	require.Equal(t, models.Consolidation, rec.TrendDirection)
	require.Equal(t, models.Wait, rec.Action)
}
