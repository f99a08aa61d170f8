package smc

import (
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

const (
	sdConsolidationWindow   = 10
	sdConsolidationRangeMax = 2.5
	sdImpulseRangeMin       = 2.0
)

// SupplyDemandZones finds a tight consolidation range followed by an
// impulsive break out of it, and records the consolidation range as a
// supply (break down) or demand (break up) zone. A zone's Valid flag
// latches false once a later close crosses its far side.
func SupplyDemandZones(bars []models.Bar) []models.SupplyDemandZone {
	var zones []models.SupplyDemandZone

	for i := sdConsolidationWindow; i < len(bars)-1; i++ {
		window := bars[i-sdConsolidationWindow : i]
		avgRange := averageRange(window)
		if avgRange <= 0 {
			continue
		}

		top, bottom := windowExtent(window)
		consolidationRange := top - bottom
		if consolidationRange > sdConsolidationRangeMax*avgRange {
			continue
		}

		cur := bars[i]
		curRange := cur.High - cur.Low
		if curRange < sdImpulseRangeMin*avgRange {
			continue
		}

		if cur.Close > top {
			zones = append(zones, buildSDZone(bars[i+1:], cur.Timestamp, models.Demand, top, bottom, consolidationRange, avgRange))
		} else if cur.Close < bottom {
			zones = append(zones, buildSDZone(bars[i+1:], cur.Timestamp, models.Supply, top, bottom, consolidationRange, avgRange))
		}
	}

	return zones
}

func buildSDZone(after []models.Bar, ts time.Time, kind models.ZoneKind, top, bottom, consolidationRange, avgRange float64) models.SupplyDemandZone {
	tested := false
	valid := true
	for _, b := range after {
		if b.Low <= top && b.High >= bottom {
			tested = true
		}
		if kind == models.Demand && b.Close < bottom {
			valid = false
		}
		if kind == models.Supply && b.Close > top {
			valid = false
		}
	}

	strength := clamp01(1 - consolidationRange/(sdConsolidationRangeMax*avgRange))

	return models.SupplyDemandZone{
		Timestamp: ts,
		Top:       top,
		Bottom:    bottom,
		Kind:      kind,
		Strength:  strength,
		Tested:    tested,
		Valid:     valid,
	}
}

func averageRange(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += b.High - b.Low
	}
	return sum / float64(len(bars))
}

func windowExtent(bars []models.Bar) (top, bottom float64) {
	if len(bars) == 0 {
		return 0, 0
	}
	top, bottom = bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > top {
			top = b.High
		}
		if b.Low < bottom {
			bottom = b.Low
		}
	}
	return top, bottom
}
