package signalgen

import (
	"errors"

	"github.com/Maryorwahmi/smc-forez/internal/errs"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/structure"
)

// ErrNoDirection is not a DetectorError cause, just a documented reason
// the generator returns Wait with zero factors: local trend is
// Consolidation, so there is nothing to score against.
var ErrNoDirection = errors.New("signalgen: no clear local direction")

// Input bundles everything the Signal Generator needs for one
// (symbol, timeframe) pass.
type Input struct {
	Structure    structure.Analysis
	SMC          models.SMCAnalysis
	CurrentPrice float64
	MarketBias   models.MarketBias
	Timeframe    models.Timeframe
}

// Generate scores confluence for one timeframe and returns the resulting
// Candidate. It never returns an error for "no signal" outcomes (those
// are legitimate Wait candidates); it only returns an error if the
// Candidate constructor itself rejects the computed levels, in which
// case the returned Candidate is already the safe Wait fallback.
func Generate(symbol string, in Input, cfg Config) (models.Candidate, error) {
	if cfg.PipFactor <= 0 {
		cfg = DefaultConfig()
	}

	direction := localDirection(in.Structure.Trend.Direction)
	if direction == models.DirNeutral {
		return models.Candidate{SignalDirection: models.DirNeutral, Timeframe: in.Timeframe}, nil
	}

	factors := []models.ConfluenceFactor{
		{Factor: "clear_local_direction", Score: 1, Details: string(direction)},
	}

	total := 1

	if biasMatches(in.MarketBias, direction) {
		factors = append(factors, models.ConfluenceFactor{Factor: "trend_alignment", Score: 2, Details: "htf bias matches local direction"})
		total += 2
	}

	lastBreak, hasBreak := lastStructureBreak(in.Structure.Breaks)
	bosAligned := hasBreak && lastBreak.Kind == models.BOS && breakMatches(lastBreak, direction)
	if bosAligned {
		factors = append(factors, models.ConfluenceFactor{Factor: "bos_confirmation", Score: 3, Details: "most recent BOS aligned with direction"})
		total += 3
	} else if hasBreak && lastBreak.Kind == models.CHOCH && breakMatches(lastBreak, direction) {
		factors = append(factors, models.ConfluenceFactor{Factor: "choch_reversal", Score: 2, Details: "CHOCH present, no aligned BOS"})
		total += 2
	}

	if sweep, ok := oppositeSweep(in.SMC.Sweeps, direction); ok {
		factors = append(factors, models.ConfluenceFactor{Factor: "opposite_liquidity_sweep", Score: 3, Details: string(sweep.Pattern)})
		total += 3
	}

	poi, hasPOI := alignedPOI(in.SMC, in.CurrentPrice, direction)
	if hasPOI {
		factors = append(factors, models.ConfluenceFactor{Factor: "valid_poi", Score: 3, Details: "price inside aligned order block or unmitigated FVG"})
		total += 3
	}

	if premiumDiscountAligned(in.SMC.PremiumDiscount, in.CurrentPrice, direction) {
		factors = append(factors, models.ConfluenceFactor{Factor: "premium_discount_alignment", Score: 2, Details: "buy in discount / sell in premium"})
		total += 2
	}

	if noOpposingSDZone(in.SMC.SupplyDemand, in.CurrentPrice, direction, cfg.OppositeZoneBand) {
		factors = append(factors, models.ConfluenceFactor{Factor: "no_opposing_sd_zone", Score: 2, Details: "no counter zone within band"})
		total += 2
	}

	if total >= 6 {
		factors = append(factors, models.ConfluenceFactor{Factor: "entry_tf_candle_pattern", Score: 1, Details: "heuristic bonus at total>=6"})
		total += 1
	}

	if total < cfg.MinConfluenceScore {
		// SignalType stays Wait (the zero value), but SignalDirection
		// still reports the local trend so the aggregator can use it for
		// weighted-trend voting even on timeframes with no actionable signal.
		return models.Candidate{
			SignalDirection:   direction,
			ConfluenceScore:   total,
			ConfluenceFactors: factors,
			Timeframe:         in.Timeframe,
		}, nil
	}

	signalType := models.Buy
	if direction == models.DirBearish {
		signalType = models.Sell
	}

	entry, sl, tp := placeLevels(in, direction, poi, hasPOI, bosAligned, cfg)

	candidate, err := models.NewCandidate(signalType, entry, sl, tp, cfg.MinRRRatio, total, factors, in.Timeframe)
	if err != nil {
		return candidate, errs.New(errs.KindSignal, "signalgen.Generate", symbol, err)
	}
	return candidate, nil
}

func localDirection(trend models.TrendDirection) models.SignalDirection {
	switch trend {
	case models.Uptrend:
		return models.DirBullish
	case models.Downtrend:
		return models.DirBearish
	default:
		return models.DirNeutral
	}
}

func biasMatches(bias models.MarketBias, direction models.SignalDirection) bool {
	return (bias == models.BiasBullish && direction == models.DirBullish) ||
		(bias == models.BiasBearish && direction == models.DirBearish)
}

func lastStructureBreak(breaks []models.StructureBreak) (models.StructureBreak, bool) {
	if len(breaks) == 0 {
		return models.StructureBreak{}, false
	}
	return breaks[len(breaks)-1], true
}

func breakMatches(b models.StructureBreak, direction models.SignalDirection) bool {
	return (b.Direction == models.Bullish && direction == models.DirBullish) ||
		(b.Direction == models.Bearish && direction == models.DirBearish)
}

// oppositeSweep looks for a sweep of the liquidity side a reversal into
// our direction would raid first: sell-side (lows) liquidity for a
// bullish setup, buy-side (highs) for a bearish one.
func oppositeSweep(sweeps []models.Sweep, direction models.SignalDirection) (models.Sweep, bool) {
	want := models.SweepLow
	if direction == models.DirBearish {
		want = models.SweepHigh
	}
	var best models.Sweep
	found := false
	for _, s := range sweeps {
		if s.Kind != want && s.Kind != models.SweepEqual {
			continue
		}
		if !found || s.Timestamp.After(best.Timestamp) {
			best = s
			found = true
		}
	}
	return best, found
}

func alignedKind(direction models.SignalDirection) models.FVGKind {
	if direction == models.DirBullish {
		return models.FVGBullish
	}
	return models.FVGBearish
}

// alignedPOI returns the nearest aligned, still-usable point of interest:
// a valid order block of matching kind containing price, or a <50%
// mitigated FVG of matching kind containing price.
func alignedPOI(smc models.SMCAnalysis, price float64, direction models.SignalDirection) (poi, bool) {
	kind := alignedKind(direction)

	for _, ob := range smc.OrderBlocks {
		if ob.Valid && ob.Kind == kind && price >= ob.Bottom && price <= ob.Top {
			return poi{top: ob.Top, bottom: ob.Bottom, isOB: true}, true
		}
	}
	for _, g := range smc.FairValueGaps {
		if g.Kind == kind && g.MitigationPercent < 50 && price >= g.Bottom && price <= g.Top {
			return poi{top: g.Top, bottom: g.Bottom, isOB: false}, true
		}
	}
	return poi{}, false
}

type poi struct {
	top, bottom float64
	isOB        bool
}

func premiumDiscountAligned(pd models.PremiumDiscountZones, price float64, direction models.SignalDirection) bool {
	if direction == models.DirBullish {
		return pd.InDiscount(price)
	}
	return pd.InPremium(price)
}

// noOpposingSDZone reports whether there is no opposing supply/demand
// zone within band (as a price fraction) of the current price: a supply
// zone blocking a bullish move, or a demand zone blocking a bearish one.
func noOpposingSDZone(zones []models.SupplyDemandZone, price float64, direction models.SignalDirection, band float64) bool {
	opposing := models.Supply
	if direction == models.DirBearish {
		opposing = models.Demand
	}
	for _, z := range zones {
		if !z.Valid || z.Kind != opposing {
			continue
		}
		mid := (z.Top + z.Bottom) / 2
		if price == 0 {
			continue
		}
		if absf(mid-price)/price <= band {
			return false
		}
	}
	return true
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
