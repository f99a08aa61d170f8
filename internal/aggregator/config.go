// Package aggregator implements the Multi-Timeframe Aggregator (spec.md
// §4.5): weighted trend across configured timeframes, cross-TF signal
// confluence, entry-timeframe selection, and final Recommendation
// assembly with trend-signal validation. Grounded on the teacher's
// internal/services/decision package for the shape of a multi-input
// decision assembler, generalized from a single-market vote to a
// priority-weighted multi-timeframe one.
package aggregator

import "github.com/Maryorwahmi/smc-forez/internal/models"

// TFWeight is a timeframe's priority weight in the trend vote and its
// tie-breaking priority in entry-timeframe selection (lower = finer/
// preferred for entries).
type TFWeight struct {
	Timeframe models.Timeframe
	Weight    float64
	Priority  float64
}

// DefaultWeights implements spec.md's H4=0.5, H1=0.3, M15=0.2, with
// D1=0.6 folded in when present. Priority ordering (low to high,
// i.e. finest timeframe first) is M15 < H1 < H4 < D1.
func DefaultWeights() []TFWeight {
	return []TFWeight{
		{Timeframe: models.D1, Weight: 0.6, Priority: 4},
		{Timeframe: models.H4, Weight: 0.5, Priority: 3},
		{Timeframe: models.H1, Weight: 0.3, Priority: 2},
		{Timeframe: models.M15, Weight: 0.2, Priority: 1},
	}
}

// Config tunes the aggregator.
type Config struct {
	Weights             []TFWeight
	PullbackMinCount    int // confluence_count needed to allow a pullback against trend
	WeakPullbackMinCount int // confluence_count needed for a "weak" pullback setup
	ConsolidationMinCount int
	ConsolidationMinConfidence float64
}

// DefaultConfig returns spec.md's stated thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:                    DefaultWeights(),
		PullbackMinCount:           3,
		WeakPullbackMinCount:       4,
		ConsolidationMinCount:      2,
		ConsolidationMinConfidence: 0.7,
	}
}
