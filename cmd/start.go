package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Maryorwahmi/smc-forez/internal/aggregator"
	"github.com/Maryorwahmi/smc-forez/internal/barstore"
	"github.com/Maryorwahmi/smc-forez/internal/broker"
	"github.com/Maryorwahmi/smc-forez/internal/config"
	"github.com/Maryorwahmi/smc-forez/internal/execution"
	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"github.com/Maryorwahmi/smc-forez/internal/metrics"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/Maryorwahmi/smc-forez/internal/notify"
	"github.com/Maryorwahmi/smc-forez/internal/quality"
	"github.com/Maryorwahmi/smc-forez/internal/risk"
	"github.com/Maryorwahmi/smc-forez/internal/signalgen"
	"github.com/Maryorwahmi/smc-forez/internal/smc"
	"github.com/Maryorwahmi/smc-forez/internal/snapshot"
	"github.com/Maryorwahmi/smc-forez/internal/structure"
)

// startCmd runs the live watchlist scan + execution loop (spec.md §4.9).
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the live analysis and execution loop",
	RunE:  runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	b := buildBroker(cfg.Broker)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.Connect(ctx, &broker.Credentials{Login: cfg.Broker.Login, Password: cfg.Broker.Password, Server: cfg.Broker.Server}); err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}

	acct, err := b.AccountInfo(ctx)
	if err != nil {
		return fmt.Errorf("account info: %w", err)
	}

	riskProfile := risk.Profiles()[risk.Profile(cfg.Risk.Profile)]
	if riskProfile.Profile == "" {
		riskProfile = risk.Profiles()[risk.ModerateProfile]
	}
	riskProfile.PipSize = cfg.Broker.PipSize

	riskMgr := risk.NewManager(riskProfile, acct.Balance)
	guard := risk.NewGuard(log, riskMgr)
	if err := guard.Start(); err != nil {
		return fmt.Errorf("start risk guard: %w", err)
	}
	defer guard.Stop() //nolint:errcheck

	store := barstore.New()
	if err := seedStore(ctx, store, b, cfg); err != nil {
		return fmt.Errorf("seed bar store: %w", err)
	}

	execCfg := buildExecutionConfig(cfg)

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		reg, promReg := metrics.New()
		execCfg.Metrics = reg
		metricsSrv = metrics.NewServer(cfg.Metrics.Addr, promReg)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				log.Sugar().Errorw("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	loop := execution.NewLoop(store, b, riskMgr, guard, log, execCfg)

	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		notifier = notify.New(log, nil, cfg.Notify.ChatID)
		notifier.Start()
		defer notifier.Stop()
	}

	snapshotPub := snapshot.NewPublisher()
	go publishSnapshots(loop, snapshotPub)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Sugar().Info("shutdown requested")
		loop.RequestShutdown()
	}()

	runCtx := context.Background()
	return loop.Run(runCtx)
}

// publishSnapshots polls the loop's state once per second and hands it
// to the snapshot publisher, for a host-side status endpoint. It exits
// with the process; the loop itself never waits on it.
func publishSnapshots(loop *execution.Loop, pub *snapshot.Publisher) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		pub.Publish(snapshot.State{
			TakenAt:       time.Now(),
			Balance:       loop.Balance(),
			OpenPositions: loop.Positions(),
			Paused:        loop.Paused(),
		})
	}
}

func buildLogger(cfg config.LoggingConfig) (*logger.Logger, error) {
	path := cfg.Path
	if path == "" {
		path = "stdout"
	}
	return logger.New(path)
}

func buildBroker(cfg config.BrokerConfig) broker.Broker {
	if cfg.Login == "" || cfg.Login == "auto" {
		return broker.NewMockBroker(1, 10000)
	}
	apiKey := os.Getenv("BROKER_API_KEY")
	secretKey := os.Getenv("BROKER_SECRET_KEY")
	return broker.NewBinanceBroker(apiKey, secretKey, 1200, time.Minute, cfg.PipSize)
}

// seedStore backfills every watchlist symbol/timeframe with enough
// history for the structure detector's swing lookback before the loop's
// first tick.
func seedStore(ctx context.Context, store *barstore.Store, b broker.Broker, cfg *config.Config) error {
	const seedBars = 300
	for _, symbol := range cfg.Trading.Symbols {
		for _, tfName := range cfg.Trading.Timeframes {
			tf := models.Timeframe(tfName)
			bars, err := b.Rates(ctx, symbol, tf, seedBars)
			if err != nil {
				return fmt.Errorf("rates %s %s: %w", symbol, tfName, err)
			}
			for _, bar := range bars {
				if err := store.Append(symbol, tf, bar); err != nil && err != models.ErrNonMonotoneBar {
					return err
				}
			}
		}
	}
	return nil
}

// buildExecutionConfig maps the loaded config document onto the
// execution loop's per-symbol pipeline configs, starting from each
// detector's spec defaults and overriding the fields the config
// schema exposes.
func buildExecutionConfig(cfg *config.Config) execution.Config {
	structCfg := structure.DefaultConfig()
	if cfg.Analysis.SwingPointLookback > 0 {
		structCfg.SwingLength = cfg.Analysis.SwingPointLookback
	}

	smcCfg := smc.DefaultConfig()
	if cfg.Analysis.LiquidityThreshold > 0 {
		smcCfg.PipFactor = cfg.Analysis.LiquidityThreshold
	}
	if cfg.Analysis.FVGMinSizePips > 0 {
		smcCfg.MinFVGPips = cfg.Analysis.FVGMinSizePips
	}

	sigCfg := signalgen.DefaultConfig()
	if cfg.Quality.MinConfluenceScore > 0 {
		sigCfg.MinConfluenceScore = cfg.Quality.MinConfluenceScore
	}
	if cfg.Quality.MinRRRatio > 0 {
		sigCfg.MinRRRatio = cfg.Quality.MinRRRatio
	}

	aggCfg := aggregator.DefaultConfig()

	timeframes := make([]execution.TFConfig, 0, len(cfg.Trading.Timeframes))
	for _, tfName := range cfg.Trading.Timeframes {
		timeframes = append(timeframes, execution.TFConfig{
			Timeframe:  models.Timeframe(tfName),
			WindowSize: 300,
		})
	}

	htf, mtf := highTimeframes(cfg.Trading.Timeframes)

	pipeline := execution.PipelineConfig{
		Timeframes: timeframes,
		HTF:        htf,
		MTF:        mtf,
		Structure:  structCfg,
		SMC:        smcCfg,
		SignalGen:  sigCfg,
		Aggregator: aggCfg,
	}

	watchlist := make([]execution.SymbolConfig, 0, len(cfg.Trading.Symbols))
	for _, symbol := range cfg.Trading.Symbols {
		watchlist = append(watchlist, execution.SymbolConfig{
			Symbol:   symbol,
			Pipeline: pipeline,
			PipSize:  cfg.Broker.PipSize,
		})
	}

	tickInterval := time.Duration(cfg.Trading.TickIntervalSecs) * time.Second
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}

	return execution.Config{
		TickInterval: tickInterval,
		ChunkSize:    10 * time.Second,
		Watchlist:    watchlist,
		Quality: quality.Config{
			MinRRRatio:         sigCfg.MinRRRatio,
			MinConfluenceScore: sigCfg.MinConfluenceScore,
		},
	}
}

// highTimeframes picks the two highest-ranked configured timeframes as
// the bias filter's HTF/MTF legs, falling back to H4/H1 when the
// watchlist names fewer than two recognized timeframes.
func highTimeframes(tfNames []string) (htf, mtf models.Timeframe) {
	rank := map[string]int{"M1": 0, "M5": 1, "M15": 2, "H1": 3, "H4": 4, "D1": 5, "W1": 6}

	ranked := make([]string, 0, len(tfNames))
	for _, name := range tfNames {
		if _, ok := rank[name]; ok {
			ranked = append(ranked, name)
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return rank[ranked[i]] > rank[ranked[j]] })

	htf, mtf = models.H4, models.H1
	if len(ranked) > 0 {
		htf = models.Timeframe(ranked[0])
	}
	if len(ranked) > 1 {
		mtf = models.Timeframe(ranked[1])
	}
	return htf, mtf
}
