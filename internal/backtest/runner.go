package backtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"github.com/Maryorwahmi/smc-forez/internal/libs/storage/simpledb"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"golang.org/x/sync/errgroup"
)

// RunInput bundles one symbol's replay inputs for RunMany.
type RunInput struct {
	Bars    []models.Bar
	Signals []Signal
	Config  Config
}

// RunMany runs one backtest per symbol concurrently via errgroup,
// grounded on SPEC_FULL.md's domain-stack wiring note for
// golang.org/x/sync/errgroup: each individual run stays internally
// single-threaded and deterministic, satisfying spec.md §5's ordering
// guarantee within a symbol while the fan-out itself runs in parallel.
func RunMany(ctx context.Context, inputs map[string]RunInput) (map[string]Result, error) {
	results := make(map[string]Result, len(inputs))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for symbol, in := range inputs {
		symbol, in := symbol, in
		g.Go(func() error {
			res := Run(symbol, in.Bars, in.Signals, in.Config)
			mu.Lock()
			results[symbol] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Persister saves a Result through the teacher's simpledb.Storage,
// generalized from persisting live trading state to persisting one
// backtest session's artefact, per spec.md §6.
type Persister struct {
	storage *simpledb.Storage
}

// NewPersister wires a Persister over a state file + backup directory.
func NewPersister(log *logger.Logger, resultFile, backupDir string) (*Persister, error) {
	storage, err := simpledb.NewStorage(log, resultFile, backupDir)
	if err != nil {
		return nil, fmt.Errorf("backtest: new persister: %w", err)
	}
	return &Persister{storage: storage}, nil
}

// Save persists one backtest Result as the state file, then snapshots
// it into the backup directory.
func (p *Persister) Save(result Result) error {
	if err := p.storage.Save(result); err != nil {
		return fmt.Errorf("backtest: save result: %w", err)
	}
	return p.storage.Backup()
}
