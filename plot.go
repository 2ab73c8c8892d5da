package forecaster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-rforecaster/stats"
	"github.com/aouyang1/go-rforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const TitleRolling = "Rolling Mean & Standard Deviation"

var ErrSeriesLenMismatch = errors.New("series length does not match time length")

// missing is the echarts placeholder for a gap in a line
const missing = "-"

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data = append(data, opts.LineData{Value: missing})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must each have the same length as the input time slice. NaN values are
// drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) (*charts.Line, error) {
	if len(seriesName) != len(y) {
		return nil, fmt.Errorf("%d names for %d series, %w", len(seriesName), len(y), ErrSeriesLenMismatch)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		if len(y[i]) != len(t) {
			return nil, fmt.Errorf("%s has %d values for %d times, %w", series, len(y[i]), len(t), ErrSeriesLenMismatch)
		}
		line = line.AddSeries(series, lineData(y[i]))
	}
	return line, nil
}

// LineForecast generates an echart line chart of the training data followed by the forecast
// and its confidence bounds over the forecast horizon
func LineForecast(title string, trainingData *timedataset.TimeDataset, res *Results) (*charts.Line, error) {
	n := len(trainingData.T)
	h := len(res.T)

	t := make([]time.Time, 0, n+h)
	t = append(t, trainingData.T...)
	t = append(t, res.T...)

	names := []string{"Actual", "Forecast"}
	series := [][]float64{
		padRight(trainingData.Y, h),
		padLeft(res.Forecast, n),
	}
	for _, interval := range res.Intervals {
		names = append(names,
			fmt.Sprintf("Lower %.0f%%", interval.Level),
			fmt.Sprintf("Upper %.0f%%", interval.Level),
		)
		series = append(series, padLeft(interval.Lower, n), padLeft(interval.Upper, n))
	}
	if res.Method != "" {
		title = fmt.Sprintf("%s: %s", title, res.Method)
	}
	return LineTSeries(title, names, t, series)
}

func padRight(y []float64, n int) []float64 {
	out := make([]float64, len(y), len(y)+n)
	copy(out, y)
	for i := 0; i < n; i++ {
		out = append(out, math.NaN())
	}
	return out
}

func padLeft(y []float64, n int) []float64 {
	out := make([]float64, n, n+len(y))
	for i := 0; i < n; i++ {
		out[i] = math.NaN()
	}
	return append(out, y...)
}

func render(w io.Writer, lines ...*charts.Line) error {
	page := components.NewPage()
	for _, line := range lines {
		page.AddCharts(line)
	}
	return page.Render(w)
}

// PlotForecast renders the training data and a forecast from it as an html page
func PlotForecast(w io.Writer, trainingData *timedataset.TimeDataset, res *Results) error {
	line, err := LineForecast("Forecast", trainingData, res)
	if err != nil {
		return err
	}
	return render(w, line)
}

// PlotAutoARIMA selects and fits an ARIMA model, forecasts h points and renders the series
// with the forecast as an html page
func (f *Forecaster) PlotAutoARIMA(ctx context.Context, w io.Writer, t []time.Time, y []float64, h int) error {
	m, err := f.AutoARIMA(ctx, t, y)
	if err != nil {
		return err
	}
	res, err := f.ARIMAForecast(ctx, m, h)
	if err != nil {
		return err
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	line, err := LineForecast(fmt.Sprintf("Forecasts from %s", m.Order), td, res)
	if err != nil {
		return err
	}
	return render(w, line)
}

// PlotSTLForecast forecasts h points with STL decomposition and renders the series with the
// forecast as an html page
func (f *Forecaster) PlotSTLForecast(ctx context.Context, w io.Writer, t []time.Time, y []float64, frequency, h int, opt *STLOptions) error {
	res, order, err := f.STLForecast(ctx, t, y, frequency, h, opt)
	if err != nil {
		return err
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	line, err := LineForecast(fmt.Sprintf("Forecasts from STL + %s", order), td, res)
	if err != nil {
		return err
	}
	return render(w, line)
}

// PlotSTLComponents decomposes the series and renders five stacked charts on the same time axis:
// the original series, the seasonal, trend and remainder components, and the seasonally adjusted
// series
func (f *Forecaster) PlotSTLComponents(ctx context.Context, w io.Writer, t []time.Time, y []float64, frequency int, opt *STLOptions) error {
	d, err := f.STLComponents(ctx, t, y, frequency, opt)
	if err != nil {
		return err
	}
	return PlotDecomposition(w, d)
}

// PlotDecomposition renders an existing decomposition as five stacked charts
func PlotDecomposition(w io.Writer, d *Decomposition) error {
	panels := []struct {
		name string
		y    []float64
	}{
		{"Original", d.Observed},
		{"Seasonal", d.Seasonal},
		{"Trend", d.Trend},
		{"Remainder", d.Remainder},
		{"Non-seasonal", d.SeasonallyAdjusted()},
	}

	lines := make([]*charts.Line, 0, len(panels))
	for _, panel := range panels {
		line, err := LineTSeries(panel.name, []string{panel.name}, d.T, [][]float64{panel.y})
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	return render(w, lines...)
}

// PlotRolling renders the series with its trailing rolling mean and standard deviation over
// window points. With overlay all three lines share one chart, otherwise each gets its own
// chart on the same time axis.
func PlotRolling(w io.Writer, t []time.Time, y []float64, overlay bool, window int) error {
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	mean, err := stats.RollingMean(td.Y, window)
	if err != nil {
		return err
	}
	stddev, err := stats.RollingStdDev(td.Y, window)
	if err != nil {
		return err
	}

	names := []string{"Original", "Rolling Mean", "Rolling Std"}
	series := [][]float64{td.Y, mean, stddev}

	if overlay {
		line, err := LineTSeries(TitleRolling, names, td.T, series)
		if err != nil {
			return err
		}
		return render(w, line)
	}

	lines := make([]*charts.Line, 0, len(names))
	for i, name := range names {
		line, err := LineTSeries(name, []string{name}, td.T, [][]float64{series[i]})
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	return render(w, lines...)
}
