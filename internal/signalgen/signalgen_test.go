package signalgen

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/structure"
	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsWaitOnConsolidation(t *testing.T) {
	in := Input{
		Structure:    structure.Analysis{Trend: structure.TrendResult{Direction: models.Consolidation}},
		CurrentPrice: 1.1000,
	}
	c, err := Generate("EURUSD", in, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, models.Wait, c.SignalType)
	require.Equal(t, models.DirNeutral, c.SignalDirection)
}

func TestGenerateReturnsWaitWhenBelowMinConfluence(t *testing.T) {
	in := Input{
		Structure:    structure.Analysis{Trend: structure.TrendResult{Direction: models.Uptrend}},
		CurrentPrice: 1.1000,
		MarketBias:   models.BiasNeutral,
	}
	c, err := Generate("EURUSD", in, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, models.Wait, c.SignalType)
	require.Less(t, c.ConfluenceScore, DefaultConfig().MinConfluenceScore)
}

func TestGenerateBuildsBuyCandidateAboveThreshold(t *testing.T) {
	price := 1.1000
	in := Input{
		Structure: structure.Analysis{
			Trend: structure.TrendResult{Direction: models.Uptrend},
			Breaks: []models.StructureBreak{
				{Timestamp: time.Unix(0, 0), Kind: models.BOS, Direction: models.Bullish, Strength: 0.5, Quality: models.QualityHigh},
			},
		},
		SMC: models.SMCAnalysis{
			OrderBlocks: []models.OrderBlock{
				{Kind: models.FVGBullish, Top: price - 0.0005, Bottom: price - 0.0030, Valid: true},
			},
			Sweeps: []models.Sweep{
				{Timestamp: time.Unix(0, 0), Kind: models.SweepLow, Pattern: models.SweepStopLossRaid},
			},
			PremiumDiscount: models.PremiumDiscountZones{MajorHigh: price + 0.02, MajorLow: price - 0.02, Equilibrium: price + 0.005},
			LiquidityZones: []models.LiquidityZone{
				{Kind: models.LiquidityHigh, Level: price + 0.0100, Swept: false},
			},
		},
		CurrentPrice: price - 0.0010,
		MarketBias:   models.BiasBullish,
		Timeframe:    models.H1,
	}

	c, err := Generate("EURUSD", in, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, models.Buy, c.SignalType)
	require.Less(t, c.StopLoss, c.EntryPrice)
	require.Less(t, c.EntryPrice, c.TakeProfit)
	require.GreaterOrEqual(t, c.RRRatio, DefaultConfig().MinRRRatio)
}

func TestGenerateConvertsInvariantFailureToWait(t *testing.T) {
	// With no POI and a zero fallback stop distance, entry and stop
	// collapse to the same price: zero risk, which NewCandidate must
	// reject rather than emit a degenerate Buy.
	cfg := DefaultConfig()
	cfg.FallbackStopPct = 0
	cfg.MinStopDistancePct = 0

	in := Input{
		Structure: structure.Analysis{
			Trend: structure.TrendResult{Direction: models.Uptrend},
			Breaks: []models.StructureBreak{
				{Timestamp: time.Unix(0, 0), Kind: models.BOS, Direction: models.Bullish},
			},
		},
		MarketBias: models.BiasBullish,
		Timeframe:  models.H1,
	}

	c, err := Generate("EURUSD", in, cfg)
	require.Error(t, err)
	require.Equal(t, models.Wait, c.SignalType)
}
