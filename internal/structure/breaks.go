package structure

import (
	"github.com/Maryorwahmi/smc-forez/internal/libs/talib"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// DefaultConfirmationCandles is the number of preceding bullish/bearish
// candles required to confirm momentum behind a break, per spec.md §4.2.
const DefaultConfirmationCandles = 3

const volumeConfirmWindow = 20
const volumeConfirmMultiplier = 1.2
const minBreakStrength = 0.1
const minQualityStrength = 0.2
const highQualityStrength = 0.3

// Breaks scans bars for BOS/CHOCH events given the full swing list
// computed over the same window. Output is ordered strictly by
// timestamp, as required by spec.md §8; only quality=high breaks with
// strength > 0.2 are kept.
func Breaks(bars []models.Bar, swings []models.SwingPoint, confirmationCandles int) []models.StructureBreak {
	if confirmationCandles <= 0 {
		confirmationCandles = DefaultConfirmationCandles
	}

	highs := swingsByIndex(swings, models.SwingHigh)
	lows := swingsByIndex(swings, models.SwingLow)

	var breaks []models.StructureBreak

	for i := confirmationCandles; i < len(bars); i++ {
		lastHigh, okHigh := lastSwingBefore(highs, i)
		lastLow, okLow := lastSwingBefore(lows, i)

		cur := bars[i]

		trendBefore := ClassifyTrend(swingsUpTo(swings, i)).Direction

		if okHigh && cur.High > lastHigh.Price && cur.Close > lastHigh.Price {
			strength := minf((cur.High-lastHigh.Price)/lastHigh.Price*100, 1.0)
			if strength > minBreakStrength && allBullish(bars, i, confirmationCandles) {
				volumeConfirmed := volumeConfirms(bars, i)
				quality := classifyQuality(true, volumeConfirmed, strength)
				if quality == models.QualityHigh && strength > minQualityStrength {
					kind := models.BOS
					if trendBefore == models.Downtrend {
						kind = models.CHOCH
					}
					breaks = append(breaks, models.StructureBreak{
						Timestamp:         cur.Timestamp,
						Kind:              kind,
						Direction:         models.Bullish,
						BrokenLevel:       lastHigh.Price,
						BreakPrice:        cur.High,
						ClosePrice:        cur.Close,
						Strength:          strength,
						Quality:           quality,
						MomentumConfirmed: true,
						VolumeConfirmed:   volumeConfirmed,
					})
				}
			}
		}

		if okLow && cur.Low < lastLow.Price && cur.Close < lastLow.Price {
			strength := minf((lastLow.Price-cur.Low)/lastLow.Price*100, 1.0)
			if strength > minBreakStrength && allBearish(bars, i, confirmationCandles) {
				volumeConfirmed := volumeConfirms(bars, i)
				quality := classifyQuality(true, volumeConfirmed, strength)
				if quality == models.QualityHigh && strength > minQualityStrength {
					kind := models.BOS
					if trendBefore == models.Uptrend {
						kind = models.CHOCH
					}
					breaks = append(breaks, models.StructureBreak{
						Timestamp:         cur.Timestamp,
						Kind:              kind,
						Direction:         models.Bearish,
						BrokenLevel:       lastLow.Price,
						BreakPrice:        cur.Low,
						ClosePrice:        cur.Close,
						Strength:          strength,
						Quality:           quality,
						MomentumConfirmed: true,
						VolumeConfirmed:   volumeConfirmed,
					})
				}
			}
		}
	}

	return breaks
}

// classifyQuality implements spec.md: high iff momentum and volume both
// confirm AND strength > 0.3; else medium (callers then filter to high
// strength>0.2, so "low" is never actually produced by this detector —
// kept for completeness of the enum, not reachable here).
func classifyQuality(momentumConfirmed, volumeConfirmed bool, strength float64) models.BreakQuality {
	if momentumConfirmed && volumeConfirmed && strength > highQualityStrength {
		return models.QualityHigh
	}
	return models.QualityMedium
}

func volumeConfirms(bars []models.Bar, i int) bool {
	if bars[i].Volume == 0 {
		return false
	}

	start := i - volumeConfirmWindow
	if start < 0 {
		start = 0
	}

	var volumes []float64
	for j := start; j < i; j++ {
		volumes = append(volumes, bars[j].Volume)
	}
	if len(volumes) == 0 {
		return false
	}

	mean := talib.Mean(volumes)
	return bars[i].Volume > volumeConfirmMultiplier*mean
}

func allBullish(bars []models.Bar, i, n int) bool {
	for j := i - n; j < i; j++ {
		if j < 0 || bars[j].Close <= bars[j].Open {
			return false
		}
	}
	return true
}

func allBearish(bars []models.Bar, i, n int) bool {
	for j := i - n; j < i; j++ {
		if j < 0 || bars[j].Close >= bars[j].Open {
			return false
		}
	}
	return true
}

func swingsByIndex(swings []models.SwingPoint, kind models.SwingKind) []models.SwingPoint {
	var out []models.SwingPoint
	for _, s := range swings {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func swingsUpTo(swings []models.SwingPoint, i int) []models.SwingPoint {
	var out []models.SwingPoint
	for _, s := range swings {
		if s.Index < i {
			out = append(out, s)
		}
	}
	return out
}

func lastSwingBefore(swings []models.SwingPoint, i int) (models.SwingPoint, bool) {
	var last models.SwingPoint
	found := false
	for _, s := range swings {
		if s.Index < i {
			last = s
			found = true
		}
	}
	return last, found
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
