package signalgen

import (
	"math"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// placeLevels implements spec.md §4.4's entry/SL/TP rules.
func placeLevels(in Input, direction models.SignalDirection, p poi, hasPOI, bosAligned bool, cfg Config) (entry, sl, tp float64) {
	pipSize := 1 / cfg.PipFactor
	price := in.CurrentPrice

	switch {
	case hasPOI && bosAligned:
		// Breakout setup: 10% beyond the block's extreme in the trade direction.
		span := p.top - p.bottom
		if direction == models.DirBullish {
			entry = p.top + 0.10*span
		} else {
			entry = p.bottom - 0.10*span
		}
	case hasPOI:
		// Pullback setup: the block's 50% equilibrium.
		entry = (p.top + p.bottom) / 2
	default:
		if direction == models.DirBullish {
			entry = price - cfg.EntryOffsetPips*pipSize
		} else {
			entry = price + cfg.EntryOffsetPips*pipSize
		}
	}

	sl = stopLoss(entry, p, hasPOI, direction, price, cfg)
	tp = takeProfit(entry, sl, direction, in.SMC, cfg)

	return entry, sl, tp
}

func stopLoss(entry float64, p poi, hasPOI bool, direction models.SignalDirection, price float64, cfg Config) float64 {
	buffer := cfg.OBBufferMinPips / cfg.PipFactor
	if pctBuffer := price * cfg.OBBufferPct; pctBuffer > buffer {
		buffer = pctBuffer
	}

	var sl float64
	if hasPOI {
		if direction == models.DirBullish {
			sl = p.bottom - buffer
		} else {
			sl = p.top + buffer
		}
	} else {
		if direction == models.DirBullish {
			sl = entry * (1 - cfg.FallbackStopPct)
		} else {
			sl = entry * (1 + cfg.FallbackStopPct)
		}
	}

	minDistance := entry * cfg.MinStopDistancePct
	if direction == models.DirBullish && entry-sl < minDistance {
		sl = entry - minDistance
	}
	if direction == models.DirBearish && sl-entry < minDistance {
		sl = entry + minDistance
	}

	return sl
}

func takeProfit(entry, sl float64, direction models.SignalDirection, smc models.SMCAnalysis, cfg Config) float64 {
	risk := absf(entry - sl)
	minReward := cfg.MinRRRatio * risk

	if level, ok := nearestAlignedTarget(smc, entry, direction, minReward); ok {
		return level
	}

	tp := entry + minReward
	limit := math.Inf(1)
	if direction == models.DirBearish {
		tp = entry - minReward
		limit = math.Inf(-1)
	}
	// Step past floating-point rounding so the R:R recomputed from the
	// placed levels is not a hair below MinRRRatio.
	for risk > 0 && absf(tp-entry)/risk < cfg.MinRRRatio {
		tp = math.Nextafter(tp, limit)
	}
	return tp
}

// nearestAlignedTarget looks for the nearest liquidity level or
// supply/demand zone edge in the trade direction that is at least
// minReward away from entry.
func nearestAlignedTarget(smc models.SMCAnalysis, entry float64, direction models.SignalDirection, minReward float64) (float64, bool) {
	best := 0.0
	found := false

	consider := func(level float64) {
		if direction == models.DirBullish {
			if level > entry && level-entry >= minReward {
				if !found || level < best {
					best, found = level, true
				}
			}
		} else {
			if level < entry && entry-level >= minReward {
				if !found || level > best {
					best, found = level, true
				}
			}
		}
	}

	wantLiquidity := models.LiquidityHigh
	if direction == models.DirBearish {
		wantLiquidity = models.LiquidityLow
	}
	for _, z := range smc.LiquidityZones {
		if z.Kind == wantLiquidity && !z.Swept {
			consider(z.Level)
		}
	}

	wantZone := models.Supply
	if direction == models.DirBearish {
		wantZone = models.Demand
	}
	for _, z := range smc.SupplyDemand {
		if z.Kind != wantZone || !z.Valid {
			continue
		}
		if direction == models.DirBullish {
			consider(z.Bottom)
		} else {
			consider(z.Top)
		}
	}

	return best, found
}
