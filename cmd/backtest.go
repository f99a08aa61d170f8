package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Maryorwahmi/smc-forez/internal/backtest"
	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/broker"
	"github.com/Maryorwahmi/smc-forez/internal/config"
	"github.com/Maryorwahmi/smc-forez/internal/execution"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/risk"
)

var backtestOutFile string

// backtestCmd replays the watchlist's historical bars through the
// analysis pipeline to build a signal list, then runs the deterministic
// backtest engine (spec.md §4.10) over it.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical bars through the pipeline and backtest the resulting signals",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestOutFile, "out", "backtest-results.json", "result file path")
	RootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	start, err := config.ParseDate(cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("parse start_date: %w", err)
	}
	end, err := config.ParseDate(cfg.Backtest.EndDate)
	if err != nil {
		return fmt.Errorf("parse end_date: %w", err)
	}

	execCfg := buildExecutionConfig(cfg)
	pipelineBySymbol := make(map[string]execution.PipelineConfig, len(execCfg.Watchlist))
	for _, sym := range execCfg.Watchlist {
		pipelineBySymbol[sym.Symbol] = sym.Pipeline
	}

	ctx := context.Background()
	source := broker.NewMockBroker(1, cfg.Backtest.InitialBalance)

	inputs := make(map[string]backtest.RunInput, len(cfg.Trading.Symbols))
	for _, symbol := range cfg.Trading.Symbols {
		signals, primaryBars, err := buildSignals(ctx, source, symbol, pipelineBySymbol[symbol], cfg.Trading.Timeframes, start, end)
		if err != nil {
			return fmt.Errorf("build signals for %s: %w", symbol, err)
		}
		inputs[symbol] = backtest.RunInput{
			Bars:    primaryBars,
			Signals: signals,
			Config: backtest.Config{
				InitialBalance: cfg.Backtest.InitialBalance,
				Commission:     cfg.Backtest.Commission,
				StartDate:      start,
				EndDate:        end,
				Risk:           risk.Profiles()[risk.Profile(cfg.Risk.Profile)],
			},
		}
	}

	results, err := backtest.RunMany(ctx, inputs)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(backtestOutFile, out, 0o644)
}

// buildSignals replays a symbol's primary (lowest-configured) timeframe
// bar by bar, seeding the bar store for every configured timeframe and
// re-running the analysis pipeline at each primary-timeframe close, per
// spec.md §4.10's "precomputed list of signals (each with a timestamp)".
func buildSignals(ctx context.Context, source broker.Broker, symbol string, pipeline execution.PipelineConfig, tfNames []string, start, end time.Time) ([]backtest.Signal, []models.Bar, error) {
	const historyBars = 2000
	store := barstore.New()

	primaryTF := models.H1
	tfRank := map[string]int{"M1": 0, "M5": 1, "M15": 2, "H1": 3, "H4": 4, "D1": 5, "W1": 6}
	found := false
	for _, name := range tfNames {
		r, ok := tfRank[name]
		if !ok {
			continue
		}
		if !found || r < tfRank[string(primaryTF)] {
			primaryTF, found = models.Timeframe(name), true
		}
	}

	barsByTF := make(map[models.Timeframe][]models.Bar, len(pipeline.Timeframes))
	for _, tf := range pipeline.Timeframes {
		bars, err := source.Rates(ctx, symbol, tf.Timeframe, historyBars)
		if err != nil {
			return nil, nil, err
		}
		barsByTF[tf.Timeframe] = bars
	}

	signals := make([]backtest.Signal, 0)
	primaryBars := barsByTF[primaryTF]

	for _, bar := range primaryBars {
		for tf, bars := range barsByTF {
			for len(bars) > 0 && !bars[0].Timestamp.After(bar.Timestamp) {
				_ = store.Append(symbol, tf, bars[0])
				bars = bars[1:]
			}
			barsByTF[tf] = bars
		}

		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}

		rec, err := execution.RunPipeline(store, symbol, bar.Close, bar.Timestamp, pipeline, func(error) {})
		if err != nil || rec.Action == models.Wait {
			continue
		}
		signals = append(signals, backtest.Signal{
			Timestamp: bar.Timestamp,
			Symbol:    symbol,
			Candidate: rec.EntryDetails,
		})
	}

	return signals, primaryBars, nil
}
