package stats

import (
	"errors"
	"fmt"
	"math"
)

var ErrNonPositive = errors.New("box-cox requires strictly positive values")

// BoxCox applies the variance stabilizing power transform to y returning a new slice.
// A lambda of 0 is the natural log.
func BoxCox(y []float64, lambda float64) ([]float64, error) {
	out := make([]float64, len(y))
	for i, v := range y {
		if v <= 0 {
			return nil, fmt.Errorf("value %f at %d, %w", v, i, ErrNonPositive)
		}
		if lambda == 0 {
			out[i] = math.Log(v)
			continue
		}
		out[i] = (math.Pow(v, lambda) - 1) / lambda
	}
	return out, nil
}

// InvBoxCox undoes BoxCox returning a new slice. For lambda 0 this is exp(y), otherwise
// exp(log(lambda*y+1)/lambda). Values outside the domain of the transform become NaN.
func InvBoxCox(y []float64, lambda float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if lambda == 0 {
			out[i] = math.Exp(v)
			continue
		}
		out[i] = math.Exp(math.Log(lambda*v+1) / lambda)
	}
	return out
}
