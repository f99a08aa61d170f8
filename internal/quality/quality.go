// Package quality implements the Quality Filter (spec.md §4.7): a
// 12-point accumulated score over a Recommendation, graded into
// Excellent/Good/Moderate/Poor, with a should_execute_signal gate.
// Grounded on the teacher's internal/services/guard/rules.go for the
// shape of an accumulated-points rule set, generalized from binary
// safety checks to a weighted quality score.
package quality

import "github.com/Maryorwahmi/smc-forez/internal/models"

// Grade is the coarse quality bucket assigned to a recommendation.
type Grade string

const (
	Excellent Grade = "excellent"
	Good      Grade = "good"
	Moderate  Grade = "moderate"
	Poor      Grade = "poor"
)

// Config tunes thresholds the filter checks the recommendation against.
type Config struct {
	MinRRRatio         float64
	MinConfluenceScore int
}

// DefaultConfig mirrors the signal generator's defaults.
func DefaultConfig() Config {
	return Config{MinRRRatio: 1.5, MinConfluenceScore: 7}
}

// Result is the filter's verdict.
type Result struct {
	Grade  Grade
	Score  float64 // in [0, 1]
	Issues []string
}

const maxPoints = 12.0

// Evaluate scores a Recommendation per spec.md §4.7's point table.
func Evaluate(rec models.Recommendation, cfg Config) Result {
	var points float64
	var issues []string

	biasAligned := rec.TrendAligned || biasMatchesAction(rec)
	if biasAligned {
		points += 2
	} else {
		points *= 0.3
		issues = append(issues, "direction conflicts market bias")
	}

	validLevels := validDirection(rec.EntryDetails)
	if validLevels {
		points += 2
	} else {
		points *= 0.1
		issues = append(issues, "invalid stop-loss/take-profit direction")
	}

	rr := rec.EntryDetails.RRRatio
	switch {
	case rr >= cfg.MinRRRatio:
		points += 1
	case rr >= 2.0:
		points += 0.5
	}

	score := rec.EntryDetails.ConfluenceScore
	switch {
	case score >= cfg.MinConfluenceScore:
		points += 1.5
	case score >= 2:
		points += 1
	}

	switch {
	case len(rec.StrengthFactors) >= 3:
		points += 1
	case len(rec.StrengthFactors) >= 2:
		points += 0.5
	}

	switch {
	case rec.TrendAligned && rec.SignalConfluence.ConfluenceCount > 0:
		points += 1.5
	case rec.TrendAligned || rec.SignalConfluence.ConfluenceCount > 0:
		points += 1
	}

	switch {
	case rec.SignalConfluence.ConfluenceCount >= 3:
		points += 1
	case rec.SignalConfluence.ConfluenceCount >= 2:
		points += 0.5
	}

	switch {
	case rec.ConfidenceScore >= 0.7:
		points += 1
	case rec.ConfidenceScore >= 0.5:
		points += 0.5
	}

	smcMentions := countSMCMentions(rec.StrengthFactors)
	switch {
	case smcMentions >= 3:
		points += 1
	case smcMentions >= 2:
		points += 0.5
	}

	switch {
	case rec.Confidence == models.ConfidenceHigh && rec.ConfidenceScore >= 0.8:
		points += 0.5
	case rec.Confidence == models.ConfidenceMedium:
		points += 0.25
	}

	normalized := clamp01(points / maxPoints)
	grade := gradeFor(normalized)

	return Result{Grade: grade, Score: normalized, Issues: issues}
}

func biasMatchesAction(rec models.Recommendation) bool {
	return (rec.Action == models.Buy && rec.MarketBias == models.BiasBullish) ||
		(rec.Action == models.Sell && rec.MarketBias == models.BiasBearish)
}

func validDirection(c models.Candidate) bool {
	switch c.SignalType {
	case models.Buy:
		return c.StopLoss < c.EntryPrice && c.EntryPrice < c.TakeProfit
	case models.Sell:
		return c.TakeProfit < c.EntryPrice && c.EntryPrice < c.StopLoss
	default:
		return false
	}
}

func countSMCMentions(factors []string) int {
	smcFactors := map[string]bool{
		"bos_confirmation": true, "choch_reversal": true, "opposite_liquidity_sweep": true,
		"valid_poi": true, "premium_discount_alignment": true, "no_opposing_sd_zone": true,
	}
	count := 0
	for _, f := range factors {
		if smcFactors[f] {
			count++
		}
	}
	return count
}

func gradeFor(score float64) Grade {
	switch {
	case score >= 0.85:
		return Excellent
	case score >= 0.70:
		return Good
	case score >= 0.50:
		return Moderate
	default:
		return Poor
	}
}

// ShouldExecuteSignal applies spec.md's execution gate: Excellent/Good
// always pass; Moderate only with R:R >= 3.0 and High confidence; Poor
// (or anything else) is rejected.
func ShouldExecuteSignal(result Result, rec models.Recommendation) (bool, string) {
	switch result.Grade {
	case Excellent, Good:
		return true, ""
	case Moderate:
		if rec.EntryDetails.RRRatio >= 3.0 && rec.Confidence == models.ConfidenceHigh {
			return true, ""
		}
		return false, "moderate quality without sufficient R:R and confidence"
	default:
		if len(result.Issues) > 0 {
			return false, result.Issues[0]
		}
		return false, "quality below execution threshold"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
