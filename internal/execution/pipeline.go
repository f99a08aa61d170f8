// Package execution implements the per-symbol analysis pipeline (C2-C8
// fused per tick) and the live execution loop (C9), per spec.md §4.9.
// Grounded on the teacher's internal/libs/worker ticker/quit-channel
// idiom, generalized from a concurrent worker pool to a single-threaded
// cooperative loop: the loop itself never hands core-state mutation to
// another goroutine, only broker I/O blocks it.
package execution

import (
	"errors"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/aggregator"
	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/bias"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/signalgen"
	"github.com/Maryorwahmi/smc-forez/internal/smc"
	"github.com/Maryorwahmi/smc-forez/internal/structure"
)

// ErrNoTimeframes is returned when a PipelineConfig names no timeframes.
var ErrNoTimeframes = errors.New("execution: no timeframes configured")

// TFConfig is one timeframe's analysis window, the input the pipeline
// needs per configured timeframe.
type TFConfig struct {
	Timeframe  models.Timeframe
	WindowSize int
}

// PipelineConfig bundles every per-tick component's tunables, so the
// execution loop can build one pipeline per symbol or share one across
// symbols with identical settings.
type PipelineConfig struct {
	Timeframes []TFConfig
	HTF        models.Timeframe // bias.Classify's higher-timeframe leg
	MTF        models.Timeframe // bias.Classify's middle-timeframe leg
	Structure  structure.Config
	SMC        smc.Config
	SignalGen  signalgen.Config
	Aggregator aggregator.Config
}

// RunPipeline executes C2-C5 for every configured timeframe of one
// symbol, using bars already present in the store, and returns the
// Aggregator's Recommendation. A detector error on a timeframe is
// logged and that timeframe contributes a Wait candidate instead of
// aborting the whole pass, per spec.md §7's propagation policy. Trend
// direction is computed for every timeframe in a first pass so the
// Bias Filter's HTF/MTF verdict is known before the Signal Generator's
// per-timeframe trend_alignment factor runs.
func RunPipeline(store *barstore.Store, symbol string, currentPrice float64, asOf time.Time, cfg PipelineConfig, onDetectorError func(error)) (models.Recommendation, error) {
	if len(cfg.Timeframes) == 0 {
		return models.Recommendation{}, ErrNoTimeframes
	}

	type tfState struct {
		bars      []models.Bar
		structure structure.Analysis
		ok        bool
	}
	states := make(map[models.Timeframe]tfState, len(cfg.Timeframes))
	trendByTF := make(map[models.Timeframe]models.TrendDirection, len(cfg.Timeframes))

	for _, tfc := range cfg.Timeframes {
		bars := store.WindowEndingAt(symbol, tfc.Timeframe, asOf.UnixNano(), tfc.WindowSize)

		st, err := structure.Analyze(symbol, bars, cfg.Structure)
		if err != nil {
			if onDetectorError != nil {
				onDetectorError(err)
			}
			trendByTF[tfc.Timeframe] = models.Consolidation
			states[tfc.Timeframe] = tfState{bars: bars, ok: false}
			continue
		}
		trendByTF[tfc.Timeframe] = st.Trend.Direction
		states[tfc.Timeframe] = tfState{bars: bars, structure: st, ok: true}
	}

	marketBias := bias.Classify(trendByTF[cfg.HTF], trendByTF[cfg.MTF])

	weightOf := make(map[models.Timeframe]float64, len(cfg.Aggregator.Weights))
	for _, w := range cfg.Aggregator.Weights {
		weightOf[w.Timeframe] = w.Priority
	}

	perTF := make([]models.TFConfluence, 0, len(cfg.Timeframes))

	for _, tfc := range cfg.Timeframes {
		st := states[tfc.Timeframe]
		if !st.ok {
			perTF = append(perTF, models.TFConfluence{Timeframe: tfc.Timeframe, Priority: weightOf[tfc.Timeframe]})
			continue
		}

		smcAnalysis, err := smc.Analyze(symbol, st.bars, currentPrice, cfg.SMC)
		if err != nil {
			if onDetectorError != nil {
				onDetectorError(err)
			}
			perTF = append(perTF, models.TFConfluence{Timeframe: tfc.Timeframe, Priority: weightOf[tfc.Timeframe]})
			continue
		}

		candidate, err := signalgen.Generate(symbol, signalgen.Input{
			Structure:    st.structure,
			SMC:          smcAnalysis,
			CurrentPrice: currentPrice,
			MarketBias:   marketBias,
			Timeframe:    tfc.Timeframe,
		}, cfg.SignalGen)
		if err != nil && onDetectorError != nil {
			onDetectorError(err)
		}

		perTF = append(perTF, models.TFConfluence{
			Timeframe: tfc.Timeframe, Candidate: candidate, Priority: weightOf[tfc.Timeframe],
		})
	}

	return aggregator.Aggregate(perTF, marketBias, cfg.Aggregator), nil
}
