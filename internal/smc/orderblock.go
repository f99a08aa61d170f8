package smc

import (
	"github.com/Maryorwahmi/smc-forez/internal/libs/talib"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

const (
	obMinBodyRatio      = 0.6
	obRangeStdevMult     = 1.5
	obStatsWindow        = 10
	obVolumeWindow       = 10
	obRejectionWindow    = 5
	obRejectionPips      = 5.0
	obHighQualityStrength = 0.5
)

// OrderBlocks scans for impulsive candles that satisfy spec.md's order
// block conditions: a dominant body, confirmation from the following
// two candles, and a range that stands out against recent highs. Each
// block's Valid flag is carried forward as a one-way latch: once a
// block is invalidated by a decisive close through it, it never
// becomes valid again on a later pass.
func OrderBlocks(bars []models.Bar, pipFactor float64) []models.OrderBlock {
	if pipFactor <= 0 {
		pipFactor = DefaultPipFactor
	}

	var blocks []models.OrderBlock

	for i := obStatsWindow; i < len(bars)-2; i++ {
		rangeStdev := talib.Stdev(highWindow(bars, i, obStatsWindow))
		cur := bars[i]
		body := cur.Close - cur.Open
		if body < 0 {
			body = -body
		}
		rng := cur.High - cur.Low
		if rng <= 0 {
			continue
		}
		bodyRatio := body / rng
		volStrength := volumeStrength(bars, i, obVolumeWindow)

		if cur.Close > cur.Open && bodyRatio > obMinBodyRatio &&
			bars[i+1].Close > cur.Close && bars[i+2].Close > bars[i+1].Low &&
			rng > obRangeStdevMult*rangeStdev {
			blocks = append(blocks, buildOrderBlock(bars, i, models.FVGBullish, bodyRatio, volStrength, pipFactor))
		}

		if cur.Close < cur.Open && bodyRatio > obMinBodyRatio &&
			bars[i+1].Close < cur.Close && bars[i+2].Close < bars[i+1].High &&
			rng > obRangeStdevMult*rangeStdev {
			blocks = append(blocks, buildOrderBlock(bars, i, models.FVGBearish, bodyRatio, volStrength, pipFactor))
		}
	}

	return blocks
}

func buildOrderBlock(bars []models.Bar, i int, kind models.FVGKind, bodyRatio, volStrength, pipFactor float64) models.OrderBlock {
	cur := bars[i]
	top, bottom := cur.High, cur.Low

	strength := clamp01(0.4*bodyRatio + 0.4*bodyFraction(cur) + 0.2*(volStrength-1))
	quality := models.QualityMedium
	if strength > obHighQualityStrength {
		quality = models.QualityHigh
	}

	tested := blockTested(bars[i+1:], top, bottom)
	valid := !blockInvalidated(bars[i+1:], kind, top, bottom)
	if valid && tested && !rejected(bars[i+1:], kind, top, bottom, pipFactor) {
		if quality == models.QualityHigh {
			quality = models.QualityMedium
		}
	}

	return models.OrderBlock{
		Timestamp:      cur.Timestamp,
		Kind:           kind,
		Top:            top,
		Bottom:         bottom,
		Strength:       strength,
		BodyRatio:      bodyRatio,
		VolumeStrength: volStrength,
		Tested:         tested,
		Valid:          valid,
		Quality:        quality,
	}
}

func bodyFraction(b models.Bar) float64 {
	if b.Open == 0 {
		return 0
	}
	d := b.Close - b.Open
	if d < 0 {
		d = -d
	}
	return d / b.Open
}

func volumeStrength(bars []models.Bar, i, window int) float64 {
	start := i - window
	if start < 0 {
		start = 0
	}
	var volumes []float64
	for j := start; j < i; j++ {
		volumes = append(volumes, bars[j].Volume)
	}
	if len(volumes) == 0 {
		return 1
	}
	mean := talib.Mean(volumes)
	if mean == 0 {
		return 1
	}
	return bars[i].Volume / mean
}

func highWindow(bars []models.Bar, i, window int) []float64 {
	start := i - window
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, i-start)
	for j := start; j < i; j++ {
		out = append(out, bars[j].High)
	}
	return out
}

// blockTested reports whether price ever re-entered [bottom, top] after
// the block formed.
func blockTested(after []models.Bar, top, bottom float64) bool {
	for _, b := range after {
		if b.Low <= top && b.High >= bottom {
			return true
		}
	}
	return false
}

// blockInvalidated reports whether a later close broke decisively
// through the far side of the block.
func blockInvalidated(after []models.Bar, kind models.FVGKind, top, bottom float64) bool {
	for _, b := range after {
		if kind == models.FVGBullish && b.Close < bottom {
			return true
		}
		if kind == models.FVGBearish && b.Close > top {
			return true
		}
	}
	return false
}

// rejected reports whether, within the first obRejectionWindow bars after
// the block formed, price moved away from it by at least obRejectionPips.
func rejected(after []models.Bar, kind models.FVGKind, top, bottom, pipFactor float64) bool {
	limit := obRejectionWindow
	if limit > len(after) {
		limit = len(after)
	}
	for j := 0; j < limit; j++ {
		b := after[j]
		if kind == models.FVGBullish && (b.High-top)*pipFactor >= obRejectionPips {
			return true
		}
		if kind == models.FVGBearish && (bottom-b.Low)*pipFactor >= obRejectionPips {
			return true
		}
	}
	return false
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
