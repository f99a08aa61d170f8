// Package barstore owns per-(symbol, timeframe) ordered OHLCV series.
// Grounded on internal/libs/cache/circular's RWMutex-guarded slice idiom,
// generalized from a fixed-size overwrite buffer to an append-only,
// strictly-ordered series (the spec requires no eviction; a later pass
// may add ring-buffer trimming for very long-running sessions).
package barstore

import (
	"sync"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

type key struct {
	symbol    string
	timeframe models.Timeframe
}

// Store is the single owner of all bar series in the process. The
// execution loop is its only writer; readers observe a consistent
// prefix because appends only ever grow a series.
type Store struct {
	mu     sync.RWMutex
	series map[key][]models.Bar
}

// New returns an empty Store.
func New() *Store {
	return &Store{series: make(map[key][]models.Bar)}
}

// Append adds a bar to the series for (symbol, timeframe). It fails if
// the new bar's timestamp does not strictly exceed the series' last bar.
func (s *Store) Append(symbol string, tf models.Timeframe, bar models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{symbol, tf}
	series := s.series[k]
	if len(series) > 0 && !bar.Timestamp.After(series[len(series)-1].Timestamp) {
		return models.ErrNonMonotoneBar
	}

	s.series[k] = append(series, bar)
	return nil
}

// Len returns the number of bars stored for (symbol, timeframe).
func (s *Store) Len(symbol string, tf models.Timeframe) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[key{symbol, tf}])
}

// WindowEndingAt returns up to n bars for (symbol, timeframe) with
// timestamp <= t, ordered oldest-first. Gaps in the source series are
// returned as-is; the store never synthesizes missing bars.
func (s *Store) WindowEndingAt(symbol string, tf models.Timeframe, t int64, n int) []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[key{symbol, tf}]
	if len(series) == 0 {
		return nil
	}

	// series is sorted by timestamp; binary search for the last index
	// with Timestamp.UnixNano() <= t.
	lo, hi := 0, len(series)
	for lo < hi {
		mid := (lo + hi) / 2
		if series[mid].Timestamp.UnixNano() <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	end := lo // exclusive upper bound
	if end == 0 {
		return nil
	}

	start := end - n
	if start < 0 {
		start = 0
	}

	out := make([]models.Bar, end-start)
	copy(out, series[start:end])
	return out
}

// Latest returns the most recently appended bar for (symbol, timeframe).
func (s *Store) Latest(symbol string, tf models.Timeframe) (models.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[key{symbol, tf}]
	if len(series) == 0 {
		return models.Bar{}, false
	}
	return series[len(series)-1], true
}

// All returns the full series for (symbol, timeframe), oldest first. Used
// by the backtest engine, which replays a complete historical series.
func (s *Store) All(symbol string, tf models.Timeframe) []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[key{symbol, tf}]
	out := make([]models.Bar, len(series))
	copy(out, series)
	return out
}
