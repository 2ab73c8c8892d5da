package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrInvalidHorizon     = errors.New("horizon must be at least one point")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// DropNan returns a new dataset without any NaN observations
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	t := make([]time.Time, 0, len(td.T))
	y := make([]float64, 0, len(td.Y))
	for i := 0; i < len(td.T); i++ {
		if math.IsNaN(td.Y[i]) {
			continue
		}
		t = append(t, td.T[i])
		y = append(y, td.Y[i])
	}
	return &TimeDataset{T: t, Y: y}
}

// Horizon generates the next h time points following the end of the dataset. Series sampled on
// the last day of every month stay on month ends, series sampled on the same day of every month
// (or every n months) are stepped in calendar months, otherwise the most common interval between
// points is used.
func (td *TimeDataset) Horizon(h int) ([]time.Time, error) {
	if h < 1 {
		return nil, fmt.Errorf("horizon of %d, %w", h, ErrInvalidHorizon)
	}
	tSlice := TimeSlice(td.T)
	end := tSlice.EndTime()

	horizon := make([]time.Time, 0, h)
	if months, ok := tSlice.MonthEndStep(); ok {
		for i := 1; i <= h; i++ {
			horizon = append(horizon, monthEnd(end, months*i))
		}
		return horizon, nil
	}
	if months, ok := tSlice.MonthlyStep(); ok {
		for i := 1; i <= h; i++ {
			horizon = append(horizon, end.AddDate(0, months*i, 0))
		}
		return horizon, nil
	}

	interval, err := tSlice.EstimateFreq()
	if err != nil {
		return nil, err
	}
	for i := 1; i <= h; i++ {
		horizon = append(horizon, end.Add(time.Duration(i)*interval))
	}
	return horizon, nil
}
