// Package stats contains the small amount of numerics computed locally rather than by the
// statistical engine: rolling window statistics, box-cox transforms and forecast accuracy scores.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrInvalidWindow = errors.New("window must be at least one point")

// RollingMean computes the trailing mean over window points. The first window-1 outputs and any
// window containing a NaN are NaN.
func RollingMean(y []float64, window int) ([]float64, error) {
	return rolling(y, window, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStdDev computes the trailing sample standard deviation (n-1 denominator) over window
// points. A window of one point yields NaN.
func RollingStdDev(y []float64, window int) ([]float64, error) {
	return rolling(y, window, func(w []float64) float64 {
		if len(w) < 2 {
			return math.NaN()
		}
		return stat.StdDev(w, nil)
	})
}

func rolling(y []float64, window int, agg func([]float64) float64) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("window of %d, %w", window, ErrInvalidWindow)
	}

	out := make([]float64, len(y))
	lastNaN := -1
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			lastNaN = i
		}
		start := i - window + 1
		if start < 0 || lastNaN >= start {
			out[i] = math.NaN()
			continue
		}
		out[i] = agg(y[start : i+1])
	}
	return out, nil
}
