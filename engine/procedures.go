package engine

import (
	"context"
	"fmt"
)

// DefaultLevels are the confidence levels requested with every forecast
var DefaultLevels = []float64{80, 95}

// AutoARIMA selects and fits an ARIMA model on y
func (e *Engine) AutoARIMA(ctx context.Context, y []float64, frequency int, seasonal bool) (*FitResponse, error) {
	req := &Request{
		Y:         y,
		Frequency: frequency,
		Seasonal:  seasonal,
	}
	resp := new(FitResponse)
	if err := e.Call(ctx, ProcAutoARIMA, req, resp); err != nil {
		return nil, err
	}
	if err := resp.validate(len(y)); err != nil {
		return nil, fmt.Errorf("%s, %w", ProcAutoARIMA, err)
	}
	return resp, nil
}

// ARIMA fits an ARIMA model of the given non-seasonal order (p, d, q) on y
func (e *Engine) ARIMA(ctx context.Context, y []float64, frequency, p, d, q int) (*FitResponse, error) {
	req := &Request{
		Y:         y,
		Frequency: frequency,
		Order:     []int{p, d, q},
	}
	resp := new(FitResponse)
	if err := e.Call(ctx, ProcARIMA, req, resp); err != nil {
		return nil, err
	}
	if err := resp.validate(len(y)); err != nil {
		return nil, fmt.Errorf("%s, %w", ProcARIMA, err)
	}
	return resp, nil
}

// Forecast forecasts h points ahead from a model previously returned by the engine
func (e *Engine) Forecast(ctx context.Context, model string, h int, levels []float64) (*ForecastResponse, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	req := &Request{
		Model:   model,
		Horizon: h,
		Levels:  levels,
	}
	resp := new(ForecastResponse)
	if err := e.Call(ctx, ProcForecast, req, resp); err != nil {
		return nil, err
	}
	if err := resp.validate(h, len(levels)); err != nil {
		return nil, fmt.Errorf("%s, %w", ProcForecast, err)
	}
	return resp, nil
}

// STLArgs are the decomposition arguments. SWindow is either "periodic" or an odd span of
// points and a TWindow of 0 leaves the trend span to the engine.
type STLArgs struct {
	Frequency int
	SWindow   string
	TWindow   int
	Robust    bool
}

func (a STLArgs) request(y []float64) *Request {
	return &Request{
		Y:         y,
		Frequency: a.Frequency,
		SWindow:   a.SWindow,
		TWindow:   a.TWindow,
		Robust:    a.Robust,
	}
}

// STL decomposes y into seasonal, trend and remainder components
func (e *Engine) STL(ctx context.Context, y []float64, args STLArgs) (*DecompositionResponse, error) {
	resp := new(DecompositionResponse)
	if err := e.Call(ctx, ProcSTL, args.request(y), resp); err != nil {
		return nil, err
	}
	if err := resp.validate(len(y)); err != nil {
		return nil, fmt.Errorf("%s, %w", ProcSTL, err)
	}
	return resp, nil
}

// STLForecast decomposes y, forecasts the seasonally adjusted series with an automatically
// selected ARIMA model and adds the seasonal component back
func (e *Engine) STLForecast(ctx context.Context, y []float64, args STLArgs, h int, levels []float64) (*ForecastResponse, error) {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	req := args.request(y)
	req.Horizon = h
	req.Levels = levels

	resp := new(ForecastResponse)
	if err := e.Call(ctx, ProcSTLForecast, req, resp); err != nil {
		return nil, err
	}
	if err := resp.validate(h, len(levels)); err != nil {
		return nil, fmt.Errorf("%s, %w", ProcSTLForecast, err)
	}
	if len(resp.Arma) == 0 {
		return nil, fmt.Errorf("%s, missing arma, %w", ProcSTLForecast, ErrMalformedOutput)
	}
	return resp, nil
}

// Check reports the engine version and the versions of the required packages
func (e *Engine) Check(ctx context.Context) (*CheckResponse, error) {
	resp := new(CheckResponse)
	if err := e.Call(ctx, ProcCheck, &Request{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Missing returns the required packages that are not installed
func (r *CheckResponse) Missing() []string {
	var missing []string
	for _, pkg := range RequiredPackages {
		if r.Packages[pkg] == "" {
			missing = append(missing, pkg)
		}
	}
	return missing
}

func (r *FitResponse) validate(n int) error {
	if r.Model == "" {
		return fmt.Errorf("missing model, %w", ErrMalformedOutput)
	}
	if len(r.Arma) < 7 {
		return fmt.Errorf("arma has %d elements, %w", len(r.Arma), ErrMalformedOutput)
	}
	if r.Fitted != nil && len(r.Fitted) != n {
		return fmt.Errorf("fitted has %d values for %d observations, %w", len(r.Fitted), n, ErrMalformedOutput)
	}
	if r.Residuals != nil && len(r.Residuals) != n {
		return fmt.Errorf("residuals has %d values for %d observations, %w", len(r.Residuals), n, ErrMalformedOutput)
	}
	return nil
}

func (r *ForecastResponse) validate(h, levels int) error {
	if len(r.Mean) != h {
		return fmt.Errorf("mean has %d values for horizon %d, %w", len(r.Mean), h, ErrMalformedOutput)
	}
	if len(r.Levels) != levels || len(r.Lower) != levels || len(r.Upper) != levels {
		return fmt.Errorf("expected bounds for %d levels, %w", levels, ErrMalformedOutput)
	}
	for i := 0; i < levels; i++ {
		if len(r.Lower[i]) != h || len(r.Upper[i]) != h {
			return fmt.Errorf("bounds at level %.0f do not match horizon %d, %w", r.Levels[i], h, ErrMalformedOutput)
		}
	}
	return nil
}

func (r *DecompositionResponse) validate(n int) error {
	for name, component := range map[string]Floats{
		"seasonal":  r.Seasonal,
		"trend":     r.Trend,
		"remainder": r.Remainder,
	} {
		if len(component) != n {
			return fmt.Errorf("%s has %d values for %d observations, %w", name, len(component), n, ErrMalformedOutput)
		}
	}
	return nil
}
