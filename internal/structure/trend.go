package structure

import "github.com/Maryorwahmi/smc-forez/internal/models"

// TrendResult is the trend classification plus its confidence, per
// spec.md §4.2's trend classification and trend-strength rules.
type TrendResult struct {
	Direction models.TrendDirection
	Strength  float64
}

// ClassifyTrend uses the last <=5 swing highs and lows (the spec reads
// "the last 3" for the HH/HL tests, evaluated over up to the last 5
// swings recorded) to classify the prevailing trend.
func ClassifyTrend(swings []models.SwingPoint) TrendResult {
	highs := LastN(swings, models.SwingHigh, 5)
	lows := LastN(swings, models.SwingLow, 5)

	if len(highs) < 3 || len(lows) < 3 {
		return TrendResult{Direction: models.Consolidation, Strength: 0}
	}

	h := highs[len(highs)-3:]
	l := lows[len(lows)-3:]

	higherHighs := h[2].Price > h[1].Price || h[1].Price > h[0].Price
	higherLows := l[2].Price > l[1].Price || l[1].Price > l[0].Price
	lowerHighs := h[2].Price < h[1].Price || h[1].Price < h[0].Price
	lowerLows := l[2].Price < l[1].Price || l[1].Price < l[0].Price

	switch {
	case higherHighs && higherLows:
		return TrendResult{Direction: models.Uptrend, Strength: trendStrength(h, l, true)}
	case lowerHighs && lowerLows:
		return TrendResult{Direction: models.Downtrend, Strength: trendStrength(h, l, false)}
	default:
		return TrendResult{Direction: models.Consolidation, Strength: 0}
	}
}

// trendStrength implements spec.md's 0.8/0.6 strength table: 0.8 when
// both legs show the strict three-point pattern, 0.6 when a trend was
// detected (by the OR test in ClassifyTrend) but not strictly so. 0.7 is
// the separate catch-all used by DefaultStrength for callers that only
// know "trend detected", without the full swing lists to hand.
func trendStrength(h, l []models.SwingPoint, up bool) float64 {
	var strict bool
	if up {
		strict = h[2].Price > h[1].Price && h[1].Price > h[0].Price &&
			l[2].Price > l[1].Price && l[1].Price > l[0].Price
	} else {
		strict = h[2].Price < h[1].Price && h[1].Price < h[0].Price &&
			l[2].Price < l[1].Price && l[1].Price < l[0].Price
	}

	if strict {
		return 0.8
	}
	return 0.6
}

// DefaultStrength is the spec's 0.7 fallback for components that need a
// trend-strength estimate without having run the full swing analysis.
const DefaultStrength = 0.7
