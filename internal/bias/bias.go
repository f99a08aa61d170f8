// Package bias implements the Bias Filter (spec.md §4.6): the HTF/MTF
// agreement rule, a strict trade-execution gate, and a cross-timeframe
// confidence assessment. Grounded on the teacher's internal/services/guard
// package for the shape of a small rule engine gating execution,
// generalized from position-size circuit breakers to directional bias.
package bias

import "github.com/Maryorwahmi/smc-forez/internal/models"

// Classify derives the cross-timeframe market bias from the higher and
// middle timeframe trend directions, per spec.md §4.6's rule table.
func Classify(htf, mtf models.TrendDirection) models.MarketBias {
	switch htf {
	case models.Uptrend:
		switch mtf {
		case models.Uptrend:
			return models.BiasBullish
		case models.Consolidation:
			return models.BiasNeutral
		case models.Downtrend:
			return models.BiasConflict
		}
	case models.Downtrend:
		switch mtf {
		case models.Downtrend:
			return models.BiasBearish
		case models.Consolidation:
			return models.BiasNeutral
		case models.Uptrend:
			return models.BiasConflict
		}
	}
	return models.BiasNeutral
}

// CanExecuteTrade reports whether a signal direction is allowed to
// execute given the current bias: only strict alignment passes.
func CanExecuteTrade(direction models.SignalDirection, bias models.MarketBias) bool {
	return (direction == models.DirBullish && bias == models.BiasBullish) ||
		(direction == models.DirBearish && bias == models.BiasBearish)
}

// Confidence is the verdict returned by AssessSignalConfidence.
type Confidence string

const (
	Execute      Confidence = "execute"
	LowConfidence Confidence = "low_confidence"
	ConfidenceWait Confidence = "wait"
)

// Assessment bundles the confidence verdict with its score and reason.
type Assessment struct {
	Confidence Confidence
	Score      float64
	Reason     string
}

// AssessSignalConfidence implements spec.md §4.6's escalation ladder:
// perfect bias alignment executes outright; otherwise it falls back to
// the pre-computed cross-timeframe signal confluence count and score sum.
func AssessSignalConfidence(direction models.SignalDirection, bias models.MarketBias, confluenceCount int, scoreSum int) Assessment {
	if CanExecuteTrade(direction, bias) {
		return Assessment{Confidence: Execute, Score: 1.0, Reason: "perfect bias alignment"}
	}

	switch {
	case confluenceCount >= 3 && scoreSum >= 30:
		return Assessment{Confidence: Execute, Score: 0.9, Reason: "strong cross-timeframe confluence"}
	case confluenceCount >= 2 && scoreSum >= 20:
		return Assessment{Confidence: Execute, Score: 0.7, Reason: "moderate cross-timeframe confluence"}
	case confluenceCount >= 1:
		return Assessment{Confidence: LowConfidence, Score: 0.4, Reason: "weak cross-timeframe confluence"}
	default:
		return Assessment{Confidence: ConfidenceWait, Score: 0, Reason: "no bias alignment or confluence"}
	}
}
