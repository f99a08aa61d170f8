package execution

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/aggregator"
	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/signalgen"
	"github.com/Maryorwahmi/smc-forez/internal/smc"
	"github.com/Maryorwahmi/smc-forez/internal/structure"
	"github.com/stretchr/testify/require"
)

func TestRunPipelineRejectsEmptyTimeframeList(t *testing.T) {
	store := barstore.New()
	_, err := RunPipeline(store, "EURUSD", 1.10, time.Now(), PipelineConfig{}, nil)
	require.ErrorIs(t, err, ErrNoTimeframes)
}

func TestRunPipelineReturnsWaitWhenNoBarsPresent(t *testing.T) {
	store := barstore.New()
	cfg := PipelineConfig{
		Timeframes: []TFConfig{{Timeframe: models.H1, WindowSize: 50}, {Timeframe: models.H4, WindowSize: 50}},
		HTF:        models.H4, MTF: models.H1,
		Structure:  structure.DefaultConfig(),
		SMC:        smc.DefaultConfig(),
		SignalGen:  signalgen.DefaultConfig(),
		Aggregator: aggregator.Config{Weights: aggregator.DefaultWeights()},
	}

	var detectorErrs int
	rec, err := RunPipeline(store, "EURUSD", 1.10, time.Now(), cfg, func(error) { detectorErrs++ })
	require.NoError(t, err)
	require.Equal(t, models.Wait, rec.Action)
	require.Greater(t, detectorErrs, 0)
}

func buildSeries(n int, start float64, asOf time.Time) []models.Bar {
	bars := make([]models.Bar, n)
	price := start
	for i := 0; i < n; i++ {
		price += 0.0005
		bars[i] = models.Bar{
			Timestamp: asOf.Add(-time.Duration(n-i) * time.Hour),
			Open:      price, High: price + 0.0006, Low: price - 0.0002, Close: price + 0.0001,
			Volume: 100,
		}
	}
	return bars
}

func TestRunPipelineProducesRecommendationFromSeededBars(t *testing.T) {
	store := barstore.New()
	asOf := time.Now()

	for _, tf := range []models.Timeframe{models.H1, models.H4} {
		for _, b := range buildSeries(60, 1.10, asOf) {
			require.NoError(t, store.Append("EURUSD", tf, b))
		}
	}

	cfg := PipelineConfig{
		Timeframes: []TFConfig{{Timeframe: models.H1, WindowSize: 50}, {Timeframe: models.H4, WindowSize: 50}},
		HTF:        models.H4, MTF: models.H1,
		Structure:  structure.DefaultConfig(),
		SMC:        smc.DefaultConfig(),
		SignalGen:  signalgen.DefaultConfig(),
		Aggregator: aggregator.Config{Weights: aggregator.DefaultWeights()},
	}

	rec, err := RunPipeline(store, "EURUSD", 1.13, asOf, cfg, nil)
	require.NoError(t, err)
	require.NotEqual(t, models.MarketBias(""), rec.MarketBias)
}
