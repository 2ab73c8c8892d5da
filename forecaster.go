// Package forecaster fits ARIMA models, forecasts and decomposes univariate time series by
// delegating the estimation to R's forecast package. Inputs and outputs stay indexed by time,
// forecasts continue the input at its inferred interval and decompositions share the input's
// index. Results can be rendered as html charts.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-rforecaster/engine"
	"github.com/aouyang1/go-rforecaster/timedataset"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNilModel            = errors.New("no model provided")
	ErrInvalidFrequency    = errors.New("seasonal frequency must be at least 2")
	ErrInsufficientPeriods = errors.New("series must be longer than two seasonal periods")
	ErrMissingValues       = errors.New("series contains missing values")
	ErrEngineMissingPkgs   = errors.New("statistical engine is missing required packages")
)

// Forecaster fits ARIMA models, forecasts and decomposes series by delegating all of the
// estimation to the statistical engine
type Forecaster struct {
	opt    *Options
	engine *engine.Engine
	logger zerolog.Logger
}

// New creates a new instance of a Forecaster running engine procedures with the provided runner.
// A nil runner uses Rscript found at the engine options' path. If no options are provided a
// default is used.
func New(runner engine.Runner, opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.validate(); err != nil {
		return nil, err
	}
	if opt.EngineOptions == nil {
		opt.EngineOptions = engine.NewDefaultOptions()
	}

	f := &Forecaster{
		opt:    opt,
		engine: engine.New(runner, opt.EngineOptions),
		logger: log.With().Str("component", "forecaster").Logger(),
	}
	return f, nil
}

// Check verifies the engine can be launched and has every required package installed
func (f *Forecaster) Check(ctx context.Context) (*engine.CheckResponse, error) {
	res, err := f.engine.Check(ctx)
	if err != nil {
		return nil, err
	}
	if missing := res.Missing(); len(missing) > 0 {
		return res, fmt.Errorf("%v, %w", missing, ErrEngineMissingPkgs)
	}
	return res, nil
}

// AutoARIMA searches for the best non-seasonal ARIMA order for the series and returns the
// fitted model
func (f *Forecaster) AutoARIMA(ctx context.Context, t []time.Time, y []float64) (*Model, error) {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create training dataset, %w", err)
	}

	resp, err := f.engine.AutoARIMA(ctx, td.Y, 1, false)
	if err != nil {
		return nil, fmt.Errorf("unable to select arima order, %w", err)
	}
	m, err := newModel(MethodAutoARIMA, 1, td.T, resp)
	if err != nil {
		return nil, err
	}
	f.logger.Debug().
		Int("p", m.Order.P).
		Int("d", m.Order.D).
		Int("q", m.Order.Q).
		Float64("aicc", float64(m.AICc)).
		Msg("selected arima order")
	return m, nil
}

// ManualARIMA fits an ARIMA model of a fixed order to the series
func (f *Forecaster) ManualARIMA(ctx context.Context, t []time.Time, y []float64, order Order) (*Model, error) {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create training dataset, %w", err)
	}

	resp, err := f.engine.ARIMA(ctx, td.Y, 1, order.P, order.D, order.Q)
	if err != nil {
		return nil, fmt.Errorf("unable to fit %s, %w", order, err)
	}
	return newModel(MethodARIMA, 1, td.T, resp)
}

// ARIMAForecast forecasts h points past the end of the model's training data
func (f *Forecaster) ARIMAForecast(ctx context.Context, m *Model, h int) (*Results, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if m.State == "" {
		return nil, ErrNoModelState
	}

	horizon, err := (&timedataset.TimeDataset{T: m.T}).Horizon(h)
	if err != nil {
		return nil, fmt.Errorf("unable to index forecast horizon, %w", err)
	}

	resp, err := f.engine.Forecast(ctx, m.State, h, f.opt.Levels)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast %s, %w", m.Order, err)
	}
	return newResults(horizon, resp), nil
}

// STLForecast decomposes the series with the given seasonal frequency, forecasts the seasonally
// adjusted series with an automatically selected ARIMA model and reseasonalizes the forecast.
// The order of the ARIMA model used is logged.
func (f *Forecaster) STLForecast(ctx context.Context, t []time.Time, y []float64, frequency, h int, opt *STLOptions) (*Results, Order, error) {
	td, opt, err := f.stlInput(t, y, frequency, opt)
	if err != nil {
		return nil, Order{}, err
	}
	horizon, err := td.Horizon(h)
	if err != nil {
		return nil, Order{}, fmt.Errorf("unable to index forecast horizon, %w", err)
	}

	resp, err := f.engine.STLForecast(ctx, td.Y, opt.args(frequency), h, f.opt.Levels)
	if err != nil {
		return nil, Order{}, fmt.Errorf("unable to forecast stl decomposition, %w", err)
	}
	order, _, err := orderFromArma(resp.Arma)
	if err != nil {
		return nil, Order{}, err
	}

	f.logger.Info().
		Int("p", order.P).
		Int("q", order.Q).
		Int("d", order.D).
		Msg("arima parameters used for seasonally adjusted series")

	return newResults(horizon, resp), order, nil
}

// STLComponents decomposes the series with the given seasonal frequency into seasonal, trend and
// remainder components aligned to t
func (f *Forecaster) STLComponents(ctx context.Context, t []time.Time, y []float64, frequency int, opt *STLOptions) (*Decomposition, error) {
	td, opt, err := f.stlInput(t, y, frequency, opt)
	if err != nil {
		return nil, err
	}

	resp, err := f.engine.STL(ctx, td.Y, opt.args(frequency))
	if err != nil {
		return nil, fmt.Errorf("unable to decompose series, %w", err)
	}
	return &Decomposition{
		T:         td.T,
		Observed:  td.Y,
		Seasonal:  resp.Seasonal,
		Trend:     resp.Trend,
		Remainder: resp.Remainder,
		Weights:   resp.Weights,
	}, nil
}

func (f *Forecaster) stlInput(t []time.Time, y []float64, frequency int, opt *STLOptions) (*timedataset.TimeDataset, *STLOptions, error) {
	if opt == nil {
		opt = NewDefaultSTLOptions()
	}
	if err := opt.validate(); err != nil {
		return nil, nil, err
	}
	if frequency < 2 {
		return nil, nil, fmt.Errorf("frequency %d, %w", frequency, ErrInvalidFrequency)
	}

	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create training dataset, %w", err)
	}
	if len(td.Y) <= 2*frequency {
		return nil, nil, fmt.Errorf("%d observations at frequency %d, %w", len(td.Y), frequency, ErrInsufficientPeriods)
	}
	for i, v := range td.Y {
		if math.IsNaN(v) {
			return nil, nil, fmt.Errorf("NaN at %d, %w", i, ErrMissingValues)
		}
	}
	return td, opt, nil
}
