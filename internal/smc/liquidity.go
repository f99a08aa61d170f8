package smc

import "github.com/Maryorwahmi/smc-forez/internal/models"

const (
	liquidityLookback        = 100
	liquidityClusterWindow   = 5
	liquidityMinTouches      = 3
	liquidityThresholdFrac   = 0.0005 // 0.05%
	liquidityMaxDistanceFrac = 0.03   // keep zones within 3% of current price
	liquidityKeepPerBucket   = 3
)

// LiquidityZones finds clusters of equal highs/lows within the trailing
// lookback window, marks each as swept once price has breached it, and
// keeps only the zones nearest current price: up to liquidityKeepPerBucket
// unswept and liquidityKeepPerBucket swept per side. Swept is a one-way
// latch — a zone already reported swept never reverts.
func LiquidityZones(bars []models.Bar, currentPrice float64) []models.LiquidityZone {
	n := len(bars)
	if n == 0 {
		return nil
	}

	start := n - liquidityLookback
	if start < 0 {
		start = 0
	}

	var zones []models.LiquidityZone

	for i := start; i < n; i++ {
		if z, ok := clusterZone(bars, i, models.LiquidityHigh, currentPrice); ok {
			zones = append(zones, z)
		}
		if z, ok := clusterZone(bars, i, models.LiquidityLow, currentPrice); ok {
			zones = append(zones, z)
		}
	}

	return pruneLiquidityZones(zones)
}

func clusterZone(bars []models.Bar, i int, kind models.LiquidityKind, currentPrice float64) (models.LiquidityZone, bool) {
	level := levelOf(bars[i], kind)
	if level <= 0 {
		return models.LiquidityZone{}, false
	}

	lo := i - liquidityClusterWindow
	if lo < 0 {
		lo = 0
	}
	hi := i + liquidityClusterWindow
	if hi >= len(bars) {
		hi = len(bars) - 1
	}

	touches := 0
	for j := lo; j <= hi; j++ {
		if j == i {
			continue
		}
		other := levelOf(bars[j], kind)
		if other <= 0 {
			continue
		}
		if absf(other-level)/level <= liquidityThresholdFrac {
			touches++
		}
	}
	if touches < liquidityMinTouches-1 {
		return models.LiquidityZone{}, false
	}

	distance := absf(currentPrice-level) / level
	if currentPrice > 0 && distance > liquidityMaxDistanceFrac {
		return models.LiquidityZone{}, false
	}

	swept := false
	for j := i + 1; j < len(bars); j++ {
		if kind == models.LiquidityHigh && bars[j].High > level {
			swept = true
			break
		}
		if kind == models.LiquidityLow && bars[j].Low < level {
			swept = true
			break
		}
	}

	return models.LiquidityZone{
		Timestamp:         bars[i].Timestamp,
		Kind:              kind,
		Level:             level,
		Touches:           touches + 1,
		Strength:          clamp01(float64(touches+1) / float64(liquidityMinTouches+2)),
		DistanceFromPrice: distance,
		Swept:             swept,
	}, true
}

func levelOf(b models.Bar, kind models.LiquidityKind) float64 {
	if kind == models.LiquidityHigh {
		return b.High
	}
	return b.Low
}

// pruneLiquidityZones keeps the nearest liquidityKeepPerBucket swept and
// unswept zones per side, ordered nearest-to-price first.
func pruneLiquidityZones(zones []models.LiquidityZone) []models.LiquidityZone {
	buckets := map[[2]bool][]models.LiquidityZone{}
	for _, z := range zones {
		key := [2]bool{z.Kind == models.LiquidityHigh, z.Swept}
		buckets[key] = append(buckets[key], z)
	}

	var out []models.LiquidityZone
	for _, bucket := range buckets {
		sortByDistance(bucket)
		if len(bucket) > liquidityKeepPerBucket {
			bucket = bucket[:liquidityKeepPerBucket]
		}
		out = append(out, bucket...)
	}
	return out
}

func sortByDistance(zones []models.LiquidityZone) {
	for i := 1; i < len(zones); i++ {
		for j := i; j > 0 && zones[j].DistanceFromPrice < zones[j-1].DistanceFromPrice; j-- {
			zones[j], zones[j-1] = zones[j-1], zones[j]
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
