// Package structure implements the Structure Detector (spec.md §4.2):
// swing points, trend classification, and structure breaks (BOS/CHOCH).
// Grounded on the teacher's moving max/min primitives in
// internal/libs/talib, generalized from oscillator smoothing to swing
// confirmation.
package structure

import "github.com/Maryorwahmi/smc-forez/internal/models"

// DefaultSwingLength is the half-window used when none is configured,
// per spec.md §4.2 ("w configurable per timeframe; default 10-20").
const DefaultSwingLength = 12

// Swings scans bars for confirmed swing highs/lows using a symmetric
// half-window of w. A bar at index i is a swing high iff its high
// strictly exceeds every high in [i-w, i-1] and [i+1, i+w]; swing low is
// symmetric. Edge bars with index < w or > n-1-w can never be swings.
func Swings(bars []models.Bar, w int) []models.SwingPoint {
	n := len(bars)
	if w <= 0 || n < 2*w+1 {
		return nil
	}

	var swings []models.SwingPoint

	for i := w; i < n-w; i++ {
		if isSwingHigh(bars, i, w) {
			swings = append(swings, models.SwingPoint{
				Index: i, Price: bars[i].High, Kind: models.SwingHigh, Strength: w,
			})
		}
		if isSwingLow(bars, i, w) {
			swings = append(swings, models.SwingPoint{
				Index: i, Price: bars[i].Low, Kind: models.SwingLow, Strength: w,
			})
		}
	}

	return swings
}

func isSwingHigh(bars []models.Bar, i, w int) bool {
	h := bars[i].High
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if bars[j].High >= h {
			return false
		}
	}
	return true
}

func isSwingLow(bars []models.Bar, i, w int) bool {
	l := bars[i].Low
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if bars[j].Low <= l {
			return false
		}
	}
	return true
}

// LastN returns the last n swing points of the given kind, oldest first.
func LastN(swings []models.SwingPoint, kind models.SwingKind, n int) []models.SwingPoint {
	var filtered []models.SwingPoint
	for _, s := range swings {
		if s.Kind == kind {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) > n {
		filtered = filtered[len(filtered)-n:]
	}
	return filtered
}
