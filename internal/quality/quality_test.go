package quality

import (
	"testing"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func goodRecommendation() models.Recommendation {
	return models.Recommendation{
		Action:         models.Buy,
		Confidence:     models.ConfidenceHigh,
		ConfidenceScore: 0.85,
		MarketBias:     models.BiasBullish,
		TrendDirection: models.Uptrend,
		TrendAligned:   true,
		SignalConfluence: models.SignalConfluence{
			ConfluenceCount: 3,
		},
		EntryDetails: models.Candidate{
			SignalType:      models.Buy,
			EntryPrice:      1.10,
			StopLoss:        1.09,
			TakeProfit:      1.13,
			RRRatio:         3.0,
			ConfluenceScore: 10,
		},
		StrengthFactors: []string{"bos_confirmation", "valid_poi", "premium_discount_alignment"},
	}
}

func TestEvaluateGoodRecommendationGradesHigh(t *testing.T) {
	result := Evaluate(goodRecommendation(), DefaultConfig())
	require.Contains(t, []Grade{Excellent, Good}, result.Grade)
	require.Empty(t, result.Issues)

	ok, reason := ShouldExecuteSignal(result, goodRecommendation())
	require.True(t, ok)
	require.Empty(t, reason)
}

func TestEvaluatePenalizesBiasConflict(t *testing.T) {
	rec := goodRecommendation()
	rec.MarketBias = models.BiasBearish // conflicts with a Buy action
	rec.TrendAligned = false

	result := Evaluate(rec, DefaultConfig())
	require.Contains(t, result.Issues, "direction conflicts market bias")
	require.Less(t, result.Score, goodRecommendationScore(t))
}

func TestEvaluatePenalizesInvalidDirection(t *testing.T) {
	rec := goodRecommendation()
	rec.EntryDetails.StopLoss = 1.12 // breaks sl<entry<tp for a Buy

	result := Evaluate(rec, DefaultConfig())
	require.Contains(t, result.Issues, "invalid stop-loss/take-profit direction")
}

func TestShouldExecuteSignalModerateRequiresRRAndConfidence(t *testing.T) {
	result := Result{Grade: Moderate}
	rec := goodRecommendation()
	rec.EntryDetails.RRRatio = 1.0
	ok, _ := ShouldExecuteSignal(result, rec)
	require.False(t, ok)

	rec.EntryDetails.RRRatio = 3.5
	rec.Confidence = models.ConfidenceHigh
	ok, _ = ShouldExecuteSignal(result, rec)
	require.True(t, ok)
}

func TestShouldExecuteSignalRejectsPoor(t *testing.T) {
	result := Result{Grade: Poor, Issues: []string{"general quality too low"}}
	ok, reason := ShouldExecuteSignal(result, goodRecommendation())
	require.False(t, ok)
	require.NotEmpty(t, reason)
}

func goodRecommendationScore(t *testing.T) float64 {
	t.Helper()
	return Evaluate(goodRecommendation(), DefaultConfig()).Score
}
