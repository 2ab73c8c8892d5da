package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoComparable   = errors.New("no points where both predicted and actual are defined")
)

// Scores tracks the accuracy of a forecast against held out observations
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	RMSE float64 `json:"root_mean_squared_error"`
	MAPE float64 `json:"mean_average_percent_error"`
}

// NewScores calculates the accuracy scores given the predicted and actual input slice values.
// Points where either value is NaN are skipped.
func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}

	return &Scores{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAPE: mape,
	}, nil
}

// MSE computes the mean squared error, mean((y-yhat)^2). A score of 0 means a perfect match.
func MSE(predicted, actual []float64) (float64, error) {
	res, err := residuals(predicted, actual, false)
	if err != nil {
		return 0, err
	}
	return floats.Dot(res, res) / float64(len(res)), nil
}

// MAPE calculates the mean average percent error, mean(abs((y-yhat)/y)). Points with an actual
// value of zero are skipped.
func MAPE(predicted, actual []float64) (float64, error) {
	res, err := residuals(predicted, actual, true)
	if err != nil {
		return 0, err
	}
	return floats.Norm(res, 1) / float64(len(res)), nil
}

// residuals returns y-yhat for every point where both are defined. With relative each residual
// is divided by y and points where y is zero are skipped.
func residuals(predicted, actual []float64, relative bool) ([]float64, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	res := make([]float64, 0, len(actual))
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		if !relative {
			res = append(res, actual[i]-predicted[i])
			continue
		}
		if actual[i] == 0 {
			continue
		}
		res = append(res, (actual[i]-predicted[i])/actual[i])
	}
	if len(res) == 0 {
		return nil, ErrNoComparable
	}
	return res, nil
}
