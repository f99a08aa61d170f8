// Package smc implements the Smart Money Concepts detector (spec.md §4.3):
// fair value gaps, order blocks, liquidity zones and sweeps, supply/demand
// zones, breaker blocks, and premium/discount partitioning. Grounded on the
// teacher's rolling max/min and stdev primitives in internal/libs/talib,
// generalized from oscillator smoothing to imbalance and consolidation
// detection.
package smc

import "github.com/Maryorwahmi/smc-forez/internal/models"

// DefaultPipFactor converts a price delta to pips for most pairs. JPY
// crosses use 100 instead of 10000; callers pass the right factor in.
const DefaultPipFactor = 10000.0

// FairValueGaps scans a three-candle window for bullish and bearish
// imbalances and reports each gap's current mitigation, computed from
// every bar seen after it formed. Mitigation only grows across
// successive calls over a widening bar slice, since it is derived from
// the min/max excursion back into the gap. Gaps smaller than minPips
// are not imbalances worth trading and are skipped, per spec.md §4.3's
// size_pips >= min_fvg_pips criterion.
func FairValueGaps(bars []models.Bar, pipFactor, minPips float64) []models.FairValueGap {
	if pipFactor <= 0 {
		pipFactor = DefaultPipFactor
	}

	var gaps []models.FairValueGap

	for i := 2; i < len(bars); i++ {
		if bars[i].Low > bars[i-2].High {
			top, bottom := bars[i].Low, bars[i-2].High
			sizePips := (top - bottom) * pipFactor
			if sizePips >= minPips {
				gaps = append(gaps, models.FairValueGap{
					Timestamp:         bars[i].Timestamp,
					Kind:              models.FVGBullish,
					Top:               top,
					Bottom:            bottom,
					SizePips:          sizePips,
					MitigationPercent: bullishMitigation(bars[i+1:], top, bottom),
				})
			}
		}
		if bars[i].High < bars[i-2].Low {
			top, bottom := bars[i-2].Low, bars[i].High
			sizePips := (top - bottom) * pipFactor
			if sizePips >= minPips {
				gaps = append(gaps, models.FairValueGap{
					Timestamp:         bars[i].Timestamp,
					Kind:              models.FVGBearish,
					Top:               top,
					Bottom:            bottom,
					SizePips:          sizePips,
					MitigationPercent: bearishMitigation(bars[i+1:], top, bottom),
				})
			}
		}
	}

	return gaps
}

// bullishMitigation measures how far subsequent lows have dug back down
// into a bullish gap from its top.
func bullishMitigation(after []models.Bar, top, bottom float64) float64 {
	if top <= bottom {
		return 100
	}
	deepest := top
	for _, b := range after {
		low := b.Low
		if low < bottom {
			low = bottom
		}
		if low < deepest {
			deepest = low
		}
	}
	return (top - deepest) / (top - bottom) * 100
}

// bearishMitigation measures how far subsequent highs have climbed back
// up into a bearish gap from its bottom.
func bearishMitigation(after []models.Bar, top, bottom float64) float64 {
	if top <= bottom {
		return 100
	}
	highest := bottom
	for _, b := range after {
		high := b.High
		if high > top {
			high = top
		}
		if high > highest {
			highest = high
		}
	}
	return (highest - bottom) / (top - bottom) * 100
}
