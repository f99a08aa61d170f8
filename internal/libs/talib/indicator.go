// Package talib holds small rolling-window math helpers shared by the
// structure and SMC detectors. Kept from the teacher's indicator wrapper
// around github.com/cinar/indicator, trimmed to the primitives the
// detectors actually need (moving max/min/mean/stdev, ATR) and away from
// the teacher's RSI/KDJ oscillators, which have no home in an
// SMC-structure engine.
package talib

import (
	"math"

	"github.com/cinar/indicator/container/bst"
)

// Max computes the moving max for the given period.
func Max(period int, values []float64) []float64 {
	result := make([]float64, len(values))

	buffer := make([]float64, period)
	bst := bst.New()

	for i := 0; i < len(values); i++ {
		bst.Insert(values[i])

		if i >= period {
			bst.Remove(buffer[i%period])
		}

		buffer[i%period] = values[i]
		result[i] = bst.Max().(float64)
	}

	return result
}

// Min computes the moving min for the given period.
func Min(period int, values []float64) []float64 {
	result := make([]float64, len(values))

	buffer := make([]float64, period)
	bst := bst.New()

	for i := 0; i < len(values); i++ {
		bst.Insert(values[i])

		if i >= period {
			bst.Remove(buffer[i%period])
		}

		buffer[i%period] = values[i]
		result[i] = bst.Min().(float64)
	}

	return result
}

// Rma is the rolling moving average (Wilder's smoothing), used by ATR.
func Rma(period int, values []float64) []float64 {
	result := make([]float64, len(values))
	sum := float64(0)

	for i, value := range values {
		count := i + 1

		if i < period {
			sum += value
		} else {
			sum = (result[i-1] * float64(period-1)) + value
			count = period
		}

		result[i] = sum / float64(count)
	}

	return result
}

// Mean returns the arithmetic mean of all of values. Returns 0 for an
// empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Stdev returns the population standard deviation of values.
func Stdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ATR computes Wilder's Average True Range over the given period for
// parallel high/low/close slices of equal length.
func ATR(period int, high, low, close []float64) []float64 {
	n := len(high)
	tr := make([]float64, n)

	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = high[i] - low[i]
			continue
		}

		hl := high[i] - low[i]
		hc := absf(high[i] - close[i-1])
		lc := absf(low[i] - close[i-1])
		tr[i] = maxf(hl, maxf(hc, lc))
	}

	return Rma(period, tr)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
