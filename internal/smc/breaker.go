package smc

import "github.com/Maryorwahmi/smc-forez/internal/models"

// BreakerBlocks derives breaker blocks from order blocks that have since
// failed: a bullish order block whose far side (bottom) is decisively
// closed through becomes a bearish breaker, and vice versa. Blocks that
// were mitigated (tested) before failing are weaker breakers than those
// that failed on first approach, since the latter shows stronger
// rejection of the level.
func BreakerBlocks(blocks []models.OrderBlock) []models.BreakerBlock {
	var breakers []models.BreakerBlock

	for _, ob := range blocks {
		if ob.Valid {
			continue
		}

		kind := models.FVGBearish
		if ob.Kind == models.FVGBearish {
			kind = models.FVGBullish
		}

		strength := ob.Strength
		if ob.Tested {
			strength *= 0.7
		} else {
			strength *= 1.0
		}

		breakers = append(breakers, models.BreakerBlock{
			Timestamp:    ob.Timestamp,
			Kind:         kind,
			Top:          ob.Top,
			Bottom:       ob.Bottom,
			Strength:     clamp01(strength),
			WasMitigated: ob.Tested,
		})
	}

	return breakers
}
