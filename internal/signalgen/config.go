// Package signalgen implements the Signal Generator (spec.md §4.4):
// per-timeframe weighted confluence scoring against a Candidate with
// entry/stop/target placement. Grounded on the teacher's
// internal/services/signal package for the shape of a detector-consuming
// scorer, generalized from RSI-threshold scoring to SMC confluence.
package signalgen

// Config tunes confluence scoring and entry/exit placement.
type Config struct {
	MinConfluenceScore int
	MinRRRatio         float64
	PipFactor          float64
	EntryOffsetPips    float64
	OBBufferMinPips    float64
	OBBufferPct        float64
	MinStopDistancePct float64
	FallbackStopPct    float64
	OppositeZoneBand   float64 // fraction of price, e.g. 0.005 = 0.5%
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		MinConfluenceScore: 7,
		MinRRRatio:         1.5,
		PipFactor:          10000,
		EntryOffsetPips:    2,
		OBBufferMinPips:    5,
		OBBufferPct:        0.001,
		MinStopDistancePct: 0.01,
		FallbackStopPct:    0.02,
		OppositeZoneBand:   0.005,
	}
}
