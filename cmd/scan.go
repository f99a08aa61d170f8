package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/broker"
	"github.com/Maryorwahmi/smc-forez/internal/execution"
	"github.com/Maryorwahmi/smc-forez/internal/rank"
)

var scanTopN int

// scanCmd runs one watchlist pass through the analysis pipeline without
// submitting any orders, and prints the highest-confidence candidates.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one analysis pass over the watchlist and print the top candidates",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTopN, "top", 5, "number of top candidates to print")
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	b := buildBroker(cfg.Broker)
	if err := b.Connect(ctx, &broker.Credentials{Login: cfg.Broker.Login, Password: cfg.Broker.Password, Server: cfg.Broker.Server}); err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}

	store := barstore.New()
	if err := seedStore(ctx, store, b, cfg); err != nil {
		return fmt.Errorf("seed bar store: %w", err)
	}

	execCfg := buildExecutionConfig(cfg)
	board := rank.NewBoard(scanTopN)
	now := time.Now()

	for _, sym := range execCfg.Watchlist {
		tick, err := b.LastTick(ctx, sym.Symbol)
		if err != nil {
			fmt.Printf("%s: last tick failed: %v\n", sym.Symbol, err)
			continue
		}
		currentPrice := (tick.Bid + tick.Ask) / 2

		rec, err := execution.RunPipeline(store, sym.Symbol, currentPrice, now, sym.Pipeline, func(derr error) {
			fmt.Printf("%s: detector error: %v\n", sym.Symbol, derr)
		})
		if err != nil {
			fmt.Printf("%s: pipeline failed: %v\n", sym.Symbol, err)
			continue
		}
		board.Add(sym.Symbol, rec)
	}

	for i, c := range board.Top() {
		fmt.Printf("%d. %-8s %-4s confidence=%.2f confluence=%d entry=%.5f sl=%.5f tp=%.5f rr=%.2f\n",
			i+1, c.Symbol, c.Rec.Action, c.Rec.ConfidenceScore, c.Rec.SignalConfluence.ConfluenceCount,
			c.Rec.EntryDetails.EntryPrice, c.Rec.EntryDetails.StopLoss, c.Rec.EntryDetails.TakeProfit, c.Rec.EntryDetails.RRRatio)
	}
	return nil
}
