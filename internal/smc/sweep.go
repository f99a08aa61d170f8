package smc

import (
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

const (
	sweepEqualTolerance = 0.0005 // 0.05%, the spec's equal-high/low tolerance
	sweepMinOccurrences = 2      // spec.md §4.3: "equal highs/lows (>=2 occurrences)"
	sweepClusterWindow  = liquidityClusterWindow
	sweepBreachMin      = 0.0005 // 0.05%
	sweepBreachMax      = 0.001  // 0.10%
	sweepReversalWindow = 4
)

// Sweeps scans confirmed liquidity zones for a breach-then-reversal
// pattern: price pokes 0.05-0.1% beyond the level and reverses back
// through it within sweepReversalWindow bars. ManipulationScore combines
// how far price poked with how strongly it reversed.
func Sweeps(bars []models.Bar, zones []models.LiquidityZone) []models.Sweep {
	var sweeps []models.Sweep

	for _, z := range zones {
		idx := indexAtOrAfter(bars, z.Timestamp)
		if idx < 0 {
			continue
		}
		kind := models.SweepLow
		if z.Kind == models.LiquidityHigh {
			kind = models.SweepHigh
		}
		for i := idx + 1; i < len(bars) && i <= idx+sweepReversalWindow; i++ {
			if s, ok := sweepAt(bars, i, z.Level, z.Kind == models.LiquidityHigh, kind, patternFor(z.Touches)); ok {
				sweeps = append(sweeps, s)
				break
			}
		}
	}

	return sweeps
}

// EqualLevelSweeps implements spec.md §4.3's own liquidity-sweep
// detection primitive directly: it scans the bar window for equal
// highs/lows (>=2 occurrences within sweepEqualTolerance), independent
// of LiquidityZones's stricter liquidityMinTouches/liquidityMaxDistanceFrac
// prune, so a two-touch level (e.g. spec.md §8.3's Scenario 3) is still
// caught even when it never qualifies as a LiquidityZone. A bar whose
// equal-highs and equal-lows clusters sit on (nearly) the same level --
// it has been defended from both directions -- is reported with
// Kind == SweepEqual instead of a single side.
func EqualLevelSweeps(bars []models.Bar) []models.Sweep {
	var sweeps []models.Sweep

	for i := range bars {
		highLevel, highOccurrences, highIsAnchor := equalLevelCluster(bars, i, true)
		lowLevel, lowOccurrences, lowIsAnchor := equalLevelCluster(bars, i, false)

		// Only the earliest bar of a cluster fires the scan; every other
		// member shares the same level and would otherwise re-report the
		// identical breach.
		highQualifies := highOccurrences >= sweepMinOccurrences && highIsAnchor
		lowQualifies := lowOccurrences >= sweepMinOccurrences && lowIsAnchor

		var s models.Sweep
		var ok bool
		switch {
		case highQualifies && lowQualifies && absf(highLevel-lowLevel)/highLevel <= sweepEqualTolerance:
			s, ok = equalLevelSweepAt(bars, i, highLevel, true, models.SweepEqual)
		case highQualifies:
			s, ok = equalLevelSweepAt(bars, i, highLevel, true, models.SweepHigh)
		case lowQualifies:
			s, ok = equalLevelSweepAt(bars, i, lowLevel, false, models.SweepLow)
		}
		if ok {
			sweeps = append(sweeps, s)
		}
	}

	return sweeps
}

func equalLevelSweepAt(bars []models.Bar, i int, level float64, high bool, kind models.SweepKind) (models.Sweep, bool) {
	for j := i + 1; j < len(bars) && j <= i+sweepReversalWindow; j++ {
		if s, ok := sweepAt(bars, j, level, high, kind, models.SweepStopLossRaid); ok {
			return s, true
		}
	}
	return models.Sweep{}, false
}

// equalLevelCluster counts how many bars within sweepClusterWindow of i
// (inclusive of i) share i's high (or low) within sweepEqualTolerance, and
// reports whether i is the earliest member of that cluster (isAnchor) --
// the caller only scans forward for a breach from the anchor, so a
// cluster of N equal highs reports at most one sweep, not N.
func equalLevelCluster(bars []models.Bar, i int, high bool) (level float64, occurrences int, isAnchor bool) {
	level = bars[i].High
	if !high {
		level = bars[i].Low
	}
	if level <= 0 {
		return 0, 0, false
	}

	lo := i - sweepClusterWindow
	if lo < 0 {
		lo = 0
	}
	hi := i + sweepClusterWindow
	if hi >= len(bars) {
		hi = len(bars) - 1
	}

	occurrences = 1
	isAnchor = true
	for j := lo; j <= hi; j++ {
		if j == i {
			continue
		}
		other := bars[j].High
		if !high {
			other = bars[j].Low
		}
		if other <= 0 {
			continue
		}
		if absf(other-level)/level <= sweepEqualTolerance {
			occurrences++
			if j < i {
				isAnchor = false
			}
		}
	}
	return level, occurrences, isAnchor
}

func sweepAt(bars []models.Bar, i int, level float64, high bool, kind models.SweepKind, pattern models.SweepPattern) (models.Sweep, bool) {
	b := bars[i]

	if high {
		breach := (b.High - level) / level
		if breach < sweepBreachMin || breach > sweepBreachMax {
			return models.Sweep{}, false
		}
		if b.Close >= level {
			return models.Sweep{}, false
		}
		reversal := (b.High - b.Close) / level
		return models.Sweep{
			Timestamp:         b.Timestamp,
			Pattern:           pattern,
			Kind:              kind,
			Level:             level,
			SweepStrength:     clamp01(breach / sweepBreachMax),
			ReversalStrength:  clamp01(reversal / sweepBreachMax),
			ManipulationScore: clamp01(breach/sweepBreachMax) + clamp01(reversal/sweepBreachMax),
		}, true
	}

	breach := (level - b.Low) / level
	if breach < sweepBreachMin || breach > sweepBreachMax {
		return models.Sweep{}, false
	}
	if b.Close <= level {
		return models.Sweep{}, false
	}
	reversal := (b.Close - b.Low) / level
	return models.Sweep{
		Timestamp:         b.Timestamp,
		Pattern:           pattern,
		Kind:              kind,
		Level:             level,
		SweepStrength:     clamp01(breach / sweepBreachMax),
		ReversalStrength:  clamp01(reversal / sweepBreachMax),
		ManipulationScore: clamp01(breach/sweepBreachMax) + clamp01(reversal/sweepBreachMax),
	}, true
}

// patternFor distinguishes a deliberate liquidity grab (a well-touched,
// obvious level) from an opportunistic stop-loss raid (a thinner level).
func patternFor(touches int) models.SweepPattern {
	if touches >= liquidityMinTouches+1 {
		return models.SweepLiquidityGrab
	}
	return models.SweepStopLossRaid
}

func indexAtOrAfter(bars []models.Bar, t time.Time) int {
	for i, b := range bars {
		if !b.Timestamp.Before(t) {
			return i
		}
	}
	return -1
}
