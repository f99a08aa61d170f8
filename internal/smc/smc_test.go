package smc

import (
	"fmt"
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func bar(t int, o, h, l, c, v float64) models.Bar {
	return models.Bar{
		Timestamp: time.Unix(0, 0).Add(time.Duration(t) * time.Hour),
		Open:      o, High: h, Low: l, Close: c, Volume: v,
	}
}

func TestFairValueGapsDetectsBullishGapAndMitigation(t *testing.T) {
	bars := []models.Bar{
		bar(0, 1.1000, 1.1010, 1.0990, 1.1005, 100),
		bar(1, 1.1005, 1.1060, 1.1000, 1.1055, 100),
		bar(2, 1.1055, 1.1080, 1.1040, 1.1075, 100), // low 1.1040 > high[0] 1.1010: gap
		bar(3, 1.1075, 1.1080, 1.1020, 1.1030, 100), // dips back into the gap
	}

	gaps := FairValueGaps(bars, DefaultPipFactor, 0)
	require.Len(t, gaps, 1)
	g := gaps[0]
	require.Equal(t, models.FVGBullish, g.Kind)
	require.Greater(t, g.Top, g.Bottom)
	require.Greater(t, g.MitigationPercent, 0.0)
	require.LessOrEqual(t, g.MitigationPercent, 100.0)
}

func TestFairValueGapsSkipsGapsBelowMinSize(t *testing.T) {
	bars := []models.Bar{
		bar(0, 1.1000, 1.1010, 1.0990, 1.1005, 100),
		bar(1, 1.1005, 1.1011, 1.1000, 1.1009, 100),
		bar(2, 1.1011, 1.1020, 1.1011, 1.1015, 100), // low 1.1011 > high[0] 1.1010: 1-pip gap
	}

	require.Len(t, FairValueGaps(bars, DefaultPipFactor, 0), 1)
	require.Empty(t, FairValueGaps(bars, DefaultPipFactor, 5.0))
}

func TestFairValueGapActiveBecomesFalseAtFullMitigation(t *testing.T) {
	g := models.FairValueGap{Top: 1.10, Bottom: 1.09, MitigationPercent: 100}
	require.False(t, g.Active())
	g.MitigationPercent = 99.9
	require.True(t, g.Active())
}

func TestOrderBlocksInvariantTopGEBottom(t *testing.T) {
	bars := make([]models.Bar, 0, 30)
	price := 1.1000
	for i := 0; i < 30; i++ {
		o := price
		c := price + 0.0030
		bars = append(bars, bar(i, o, c+0.0005, o-0.0005, c, 500))
		price = c
	}

	blocks := OrderBlocks(bars, DefaultPipFactor)
	for _, b := range blocks {
		require.GreaterOrEqual(t, b.Top, b.Bottom)
		require.GreaterOrEqual(t, b.Strength, 0.0)
		require.LessOrEqual(t, b.Strength, 1.0)
	}
}

func TestPremiumDiscountMidpoint(t *testing.T) {
	bars := []models.Bar{
		bar(0, 1.10, 1.12, 1.08, 1.10, 100),
		bar(1, 1.10, 1.11, 1.09, 1.10, 100),
	}
	pd := PremiumDiscount(bars, 50)
	require.Equal(t, 1.12, pd.MajorHigh)
	require.Equal(t, 1.08, pd.MajorLow)
	require.InDelta(t, 1.10, pd.Equilibrium, 1e-9)
	require.True(t, pd.InPremium(1.115))
	require.True(t, pd.InDiscount(1.085))
}

func TestSupplyDemandZoneInvariant(t *testing.T) {
	var bars []models.Bar
	base := 1.1000
	for i := 0; i < 10; i++ {
		bars = append(bars, bar(i, base, base+0.0003, base-0.0003, base+0.0001, 100))
	}
	// impulsive breakout bar
	bars = append(bars, bar(10, base, base+0.0030, base-0.0002, base+0.0028, 500))
	for i := 11; i < 20; i++ {
		bars = append(bars, bar(i, base+0.0028, base+0.0035, base+0.0020, base+0.0030, 100))
	}

	zones := SupplyDemandZones(bars)
	for _, z := range zones {
		require.GreaterOrEqual(t, z.Top, z.Bottom)
	}
}

// TestLiquidityZoneSweptIsOneWayOnceDetected rebuilds LiquidityZones over
// a widening bar slice (before the breach, at the breach, and one bar
// past it) and checks that once a zone's Swept flag is observed true for
// a given (Kind, Level), it never reverts to false on a later call --
// the one-way latch invariant documented on models.LiquidityZone.
func TestLiquidityZoneSweptIsOneWayOnceDetected(t *testing.T) {
	var bars []models.Bar
	level := 1.1050
	for i := 0; i < 12; i++ {
		h := level
		if i%4 != 0 {
			h = level - 0.0002
		}
		bars = append(bars, bar(i, 1.1000, h, 1.0990, 1.1000, 100))
	}
	bars = append(bars, bar(12, 1.1000, level+0.0010, 1.0990, 1.1000, 100)) // breach
	bars = append(bars, bar(13, 1.1000, level+0.0005, 1.0990, 1.1000, 100)) // still above level

	sweptByLevel := map[string]bool{}
	everSwept := false
	checkNoRegression := func(zones []models.LiquidityZone) {
		for _, z := range zones {
			key := fmt.Sprintf("%s:%.5f", z.Kind, z.Level)
			if wasSwept, seen := sweptByLevel[key]; seen && wasSwept {
				require.Truef(t, z.Swept, "zone %s reverted from swept to unswept", key)
			}
			sweptByLevel[key] = z.Swept
			everSwept = everSwept || z.Swept
		}
	}

	checkNoRegression(LiquidityZones(bars[:12], 1.1000))
	checkNoRegression(LiquidityZones(bars[:13], 1.1000))
	checkNoRegression(LiquidityZones(bars[:14], 1.1000))

	require.True(t, everSwept, "expected the clustered high to be detected swept after the breach bar")
}

// TestEqualLevelSweepsFiresOnTwoTouchEqualHigh covers spec.md §8.3's
// Scenario 3: two equal highs are enough to detect a sweep, unlike
// LiquidityZones which requires liquidityMinTouches (3) before the
// level exists at all.
func TestEqualLevelSweepsFiresOnTwoTouchEqualHigh(t *testing.T) {
	level := 1.30000
	bars := []models.Bar{
		bar(0, 1.29990, level, 1.29500, 1.29995, 100),
		bar(1, 1.29995, level, 1.29000, 1.29998, 100),         // equal high, only 2 touches total
		bar(2, 1.30000, level*1.0007, 1.29900, 1.29950, 100), // breach ~0.07%, closes below level
	}

	zones := LiquidityZones(bars, 1.29995)
	for _, z := range zones {
		require.NotEqual(t, level, z.Level, "a 2-touch level must not qualify as a LiquidityZone")
	}

	sweeps := EqualLevelSweeps(bars)
	require.Len(t, sweeps, 1)
	require.Equal(t, models.SweepHigh, sweeps[0].Kind)
	require.Equal(t, models.SweepStopLossRaid, sweeps[0].Pattern)
	require.Greater(t, sweeps[0].ManipulationScore, 0.0)
}

func TestBreakerBlocksOnlyFromInvalidatedOrderBlocks(t *testing.T) {
	blocks := []models.OrderBlock{
		{Kind: models.FVGBullish, Top: 1.10, Bottom: 1.09, Strength: 0.6, Valid: false, Tested: true},
		{Kind: models.FVGBearish, Top: 1.20, Bottom: 1.19, Strength: 0.8, Valid: true},
	}
	breakers := BreakerBlocks(blocks)
	require.Len(t, breakers, 1)
	require.Equal(t, models.FVGBearish, breakers[0].Kind)
	require.True(t, breakers[0].WasMitigated)
}

func TestAnalyzeInsufficientBarsIsDetectorError(t *testing.T) {
	_, err := Analyze("EURUSD", bars(3), 1.10, DefaultConfig())
	require.ErrorIs(t, err, ErrInsufficientBars)
}

func bars(n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = bar(i, 1.10, 1.11, 1.09, 1.10, 100)
	}
	return out
}
