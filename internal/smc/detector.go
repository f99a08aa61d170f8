package smc

import (
	"errors"
	"sort"

	"github.com/Maryorwahmi/smc-forez/internal/errs"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// ErrInsufficientBars is a DetectorError cause: too few bars to run any
// SMC detector meaningfully.
var ErrInsufficientBars = errors.New("smc: insufficient bars for analysis")

// minBarsForAnalysis is half the liquidity lookback (50 bars).
// LiquidityZones and PremiumDiscount clamp their lookbacks to the bars
// available, so a shorter window than their full lookback still runs.
const minBarsForAnalysis = liquidityLookback / 2

// Config tunes the SMC detector pass.
type Config struct {
	PipFactor               float64
	MinFVGPips              float64
	PremiumDiscountLookback int
	MaxFVGs                 int
	MaxOrderBlocks          int
	MaxSupplyDemand         int
}

// DefaultMinFVGPips is the original implementation's default minimum
// Fair Value Gap size (config's fvg_min_size).
const DefaultMinFVGPips = 5.0

// DefaultConfig returns the spec's defaults: keep the 5 nearest active
// structures of each kind once pruned.
func DefaultConfig() Config {
	return Config{
		PipFactor:               DefaultPipFactor,
		MinFVGPips:              DefaultMinFVGPips,
		PremiumDiscountLookback: DefaultPremiumDiscountLookback,
		MaxFVGs:                 5,
		MaxOrderBlocks:          5,
		MaxSupplyDemand:         5,
	}
}

// Analyze runs every SMC detector over the bar window and returns the
// bundled, pruned result. Per spec.md §7, a DetectorError never aborts
// the pipeline: the caller receives a zero SMCAnalysis plus the wrapped
// error and should skip emitting this pass.
func Analyze(symbol string, bars []models.Bar, currentPrice float64, cfg Config) (models.SMCAnalysis, error) {
	if cfg.PipFactor <= 0 {
		cfg = DefaultConfig()
	}
	if len(bars) < minBarsForAnalysis {
		return models.SMCAnalysis{}, errs.New(errs.KindDetector, "smc.Analyze", symbol, ErrInsufficientBars)
	}

	fvgs := pruneFVGs(FairValueGaps(bars, cfg.PipFactor, cfg.MinFVGPips), currentPrice, cfg.MaxFVGs)
	obs := pruneOrderBlocks(OrderBlocks(bars, cfg.PipFactor), currentPrice, cfg.MaxOrderBlocks)
	liquidity := LiquidityZones(bars, currentPrice)
	sweeps := append(Sweeps(bars, liquidity), EqualLevelSweeps(bars)...)
	sd := pruneSupplyDemand(SupplyDemandZones(bars), currentPrice, cfg.MaxSupplyDemand)
	breakers := BreakerBlocks(obs)
	pd := PremiumDiscount(bars, cfg.PremiumDiscountLookback)

	return models.SMCAnalysis{
		FairValueGaps:   fvgs,
		OrderBlocks:     obs,
		LiquidityZones:  liquidity,
		Sweeps:          sweeps,
		SupplyDemand:    sd,
		Breakers:        breakers,
		PremiumDiscount: pd,
	}, nil
}

func pruneFVGs(gaps []models.FairValueGap, price float64, max int) []models.FairValueGap {
	var active []models.FairValueGap
	for _, g := range gaps {
		if g.Active() {
			active = append(active, g)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return distanceToZone(price, active[i].Top, active[i].Bottom) < distanceToZone(price, active[j].Top, active[j].Bottom)
	})
	if max > 0 && len(active) > max {
		active = active[:max]
	}
	return active
}

func pruneOrderBlocks(blocks []models.OrderBlock, price float64, max int) []models.OrderBlock {
	var valid []models.OrderBlock
	for _, b := range blocks {
		if b.Valid {
			valid = append(valid, b)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		return distanceToZone(price, valid[i].Top, valid[i].Bottom) < distanceToZone(price, valid[j].Top, valid[j].Bottom)
	})
	if max > 0 && len(valid) > max {
		valid = valid[:max]
	}
	return valid
}

func pruneSupplyDemand(zones []models.SupplyDemandZone, price float64, max int) []models.SupplyDemandZone {
	var valid []models.SupplyDemandZone
	for _, z := range zones {
		if z.Valid {
			valid = append(valid, z)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		return distanceToZone(price, valid[i].Top, valid[i].Bottom) < distanceToZone(price, valid[j].Top, valid[j].Bottom)
	})
	if max > 0 && len(valid) > max {
		valid = valid[:max]
	}
	return valid
}

func distanceToZone(price, top, bottom float64) float64 {
	if price >= bottom && price <= top {
		return 0
	}
	if price < bottom {
		return bottom - price
	}
	return price - top
}
