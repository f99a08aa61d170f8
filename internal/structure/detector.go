package structure

import (
	"errors"

	"github.com/Maryorwahmi/smc-forez/internal/errs"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// ErrInsufficientBars is a DetectorError cause: not enough bars in the
// window to run swing confirmation at the configured half-window length.
var ErrInsufficientBars = errors.New("structure: insufficient bars for swing window")

// Analysis is one detector pass's full set of structural facts for a
// single (symbol, timeframe) bar window.
type Analysis struct {
	Swings []models.SwingPoint
	Trend  TrendResult
	Breaks []models.StructureBreak
}

// Config tunes the structure detector per timeframe.
type Config struct {
	SwingLength         int
	ConfirmationCandles int
}

// DefaultConfig returns the spec's defaults.
func DefaultConfig() Config {
	return Config{SwingLength: DefaultSwingLength, ConfirmationCandles: DefaultConfirmationCandles}
}

// Analyze runs the full structure detector pass. Per spec.md §7, a
// DetectorError never aborts the pipeline: the caller receives a zero
// Analysis plus the wrapped error and should skip emitting this pass.
func Analyze(symbol string, bars []models.Bar, cfg Config) (Analysis, error) {
	if cfg.SwingLength <= 0 {
		cfg.SwingLength = DefaultSwingLength
	}
	if cfg.ConfirmationCandles <= 0 {
		cfg.ConfirmationCandles = DefaultConfirmationCandles
	}

	if len(bars) < 2*cfg.SwingLength+1 {
		return Analysis{}, errs.New(errs.KindDetector, "structure.Analyze", symbol, ErrInsufficientBars)
	}

	swings := Swings(bars, cfg.SwingLength)
	trend := ClassifyTrend(swings)
	breaks := Breaks(bars, swings, cfg.ConfirmationCandles)

	return Analysis{Swings: swings, Trend: trend, Breaks: breaks}, nil
}
