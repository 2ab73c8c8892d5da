package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	forecaster "github.com/aouyang1/go-rforecaster"
	"github.com/aouyang1/go-rforecaster/stats"
	"github.com/aouyang1/go-rforecaster/timedataset"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingInput   = errors.New("no csv input provided")
	ErrInvalidOrder   = errors.New("order must be three comma separated integers p,d,q")
	ErrInvalidHoldout = errors.New("holdout must be positive and shorter than the series")
	ErrUnknownMethod  = errors.New("unknown forecast method")
)

// inputFlags are shared by every command reading a series from csv
type inputFlags struct {
	path     *string
	timeCol  *string
	valueCol *string
}

func addInputFlags(fs *flag.FlagSet) inputFlags {
	return inputFlags{
		path:     fs.String("csv", "", "csv file holding the series"),
		timeCol:  fs.String("time-col", "ds", "name of the time column"),
		valueCol: fs.String("value-col", "y", "name of the value column"),
	}
}

func (in inputFlags) load() (*timedataset.TimeDataset, error) {
	if *in.path == "" {
		return nil, ErrMissingInput
	}
	opt := timedataset.NewDefaultCSVOptions()
	opt.TimeColumn = *in.timeCol
	opt.ValueColumn = *in.valueCol
	td, err := timedataset.LoadCSV(*in.path, opt)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s, %w", *in.path, err)
	}
	log.Debug().Str("csv", *in.path).Int("points", len(td.T)).Msg("loaded series")
	return td, nil
}

// stlFlags configure the decomposition of the stl commands
type stlFlags struct {
	frequency *int
	sWindow   *string
	tWindow   *int
	robust    *bool
}

func addSTLFlags(fs *flag.FlagSet) stlFlags {
	return stlFlags{
		frequency: fs.Int("freq", 12, "number of observations per seasonal period"),
		sWindow:   fs.String("swindow", forecaster.SWindowPeriodic, "seasonal window, periodic or an odd span"),
		tWindow:   fs.Int("twindow", 0, "trend window span, 0 uses the engine default"),
		robust:    fs.Bool("robust", true, "use robust fitting"),
	}
}

func (s stlFlags) options() *forecaster.STLOptions {
	return &forecaster.STLOptions{
		SWindow: *s.sWindow,
		TWindow: *s.tWindow,
		Robust:  *s.robust,
	}
}

func (a *app) forecaster() (*forecaster.Forecaster, error) {
	opt := forecaster.NewDefaultOptions()
	opt.EngineOptions = a.cfg.EngineOptions()
	return forecaster.New(a.runner, opt)
}

// writeFile creates path and passes it to write
func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote output")
	return nil
}

func parseOrder(s string) (forecaster.Order, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return forecaster.Order{}, fmt.Errorf("%q, %w", s, ErrInvalidOrder)
	}
	vals := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return forecaster.Order{}, fmt.Errorf("%q, %w", s, ErrInvalidOrder)
		}
		vals[i] = v
	}
	return forecaster.Order{P: vals[0], D: vals[1], Q: vals[2]}, nil
}

// parseLambda returns NaN when no box-cox transform is requested
func parseLambda(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func runARIMA(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("arima", flag.ContinueOnError)
	input := addInputFlags(fs)
	h := fs.Int("h", 12, "number of points to forecast")
	orderStr := fs.String("order", "", "fixed p,d,q order, searched automatically when empty")
	lambdaStr := fs.String("lambda", "", "box-cox lambda applied before fitting")
	modelPath := fs.String("model", "", "forecast from a previously saved model instead of fitting")
	savePath := fs.String("save", "", "save the fitted model as json")
	out := fs.String("out", "", "write the forecast plot as html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lambda, err := parseLambda(*lambdaStr)
	if err != nil {
		return fmt.Errorf("invalid lambda, %w", err)
	}

	f, err := a.forecaster()
	if err != nil {
		return err
	}

	var m *forecaster.Model
	var td *timedataset.TimeDataset
	if *modelPath != "" {
		m, err = loadModel(*modelPath)
		if err != nil {
			return err
		}
		td = &timedataset.TimeDataset{T: m.T, Y: observed(m)}
	} else {
		td, err = input.load()
		if err != nil {
			return err
		}
		m, td, err = fitARIMA(ctx, f, td, *orderStr, lambda)
		if err != nil {
			return err
		}
	}

	if err := m.TablePrint(a.stdout, "", "  "); err != nil {
		return err
	}

	if *savePath != "" {
		if err := writeFile(*savePath, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}); err != nil {
			return err
		}
	}

	res, err := f.ARIMAForecast(ctx, m, *h)
	if err != nil {
		return err
	}
	if !math.IsNaN(lambda) {
		res = res.InvBoxCox(lambda)
		td.Y = stats.InvBoxCox(td.Y, lambda)
	}
	if err := printResults(a.stdout, res); err != nil {
		return err
	}
	if *out == "" {
		return nil
	}
	return writeFile(*out, func(w io.Writer) error {
		return forecaster.PlotForecast(w, td, res)
	})
}

// fitARIMA fits on the box-cox transformed series when lambda is set and returns the dataset
// the model was fit on
func fitARIMA(ctx context.Context, f *forecaster.Forecaster, td *timedataset.TimeDataset, orderStr string, lambda float64) (*forecaster.Model, *timedataset.TimeDataset, error) {
	td = td.Copy()
	if !math.IsNaN(lambda) {
		y, err := stats.BoxCox(td.Y, lambda)
		if err != nil {
			return nil, nil, err
		}
		td.Y = y
	}

	if orderStr == "" {
		m, err := f.AutoARIMA(ctx, td.T, td.Y)
		return m, td, err
	}
	order, err := parseOrder(orderStr)
	if err != nil {
		return nil, nil, err
	}
	m, err := f.ManualARIMA(ctx, td.T, td.Y, order)
	return m, td, err
}

func loadModel(path string) (*forecaster.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m forecaster.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unable to decode model %s, %w", path, err)
	}
	return &m, nil
}

// observed rebuilds the training series of a saved model from its fitted values and residuals
func observed(m *forecaster.Model) []float64 {
	y := make([]float64, len(m.Fitted))
	for i := range y {
		y[i] = math.NaN()
		if i < len(m.Residuals) {
			y[i] = m.Fitted[i] + m.Residuals[i]
		}
	}
	return y
}

func runSTL(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stl", flag.ContinueOnError)
	input := addInputFlags(fs)
	stl := addSTLFlags(fs)
	h := fs.Int("h", 12, "number of points to forecast")
	out := fs.String("out", "", "write the forecast plot as html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	td, err := input.load()
	if err != nil {
		return err
	}
	f, err := a.forecaster()
	if err != nil {
		return err
	}

	res, order, err := f.STLForecast(ctx, td.T, td.Y, *stl.frequency, *h, stl.options())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(a.stdout, "STL + %s\n", order); err != nil {
		return err
	}
	if err := printResults(a.stdout, res); err != nil {
		return err
	}
	if *out == "" {
		return nil
	}
	return writeFile(*out, func(w io.Writer) error {
		return forecaster.PlotForecast(w, td, res)
	})
}

func runComponents(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("components", flag.ContinueOnError)
	input := addInputFlags(fs)
	stl := addSTLFlags(fs)
	out := fs.String("out", "", "write the decomposition plot as html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	td, err := input.load()
	if err != nil {
		return err
	}
	f, err := a.forecaster()
	if err != nil {
		return err
	}

	d, err := f.STLComponents(ctx, td.T, td.Y, *stl.frequency, stl.options())
	if err != nil {
		return err
	}
	if err := printDecomposition(a.stdout, d); err != nil {
		return err
	}
	if *out == "" {
		return nil
	}
	return writeFile(*out, func(w io.Writer) error {
		return forecaster.PlotDecomposition(w, d)
	})
}

func runRolling(_ context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rolling", flag.ContinueOnError)
	input := addInputFlags(fs)
	window := fs.Int("window", 12, "number of trailing points in each window")
	overlay := fs.Bool("overlay", true, "draw all lines on a single chart")
	out := fs.String("out", "rolling.html", "write the rolling statistics plot as html")
	if err := fs.Parse(args); err != nil {
		return err
	}

	td, err := input.load()
	if err != nil {
		return err
	}
	return writeFile(*out, func(w io.Writer) error {
		return forecaster.PlotRolling(w, td.T, td.Y, *overlay, *window)
	})
}

// runEvaluate holds out the tail of the series, forecasts it from the rest and scores the
// forecast against what was held out
func runEvaluate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	input := addInputFlags(fs)
	stl := addSTLFlags(fs)
	method := fs.String("method", "arima", "forecast method, arima or stl")
	holdout := fs.Int("holdout", 12, "number of trailing points to hold out")
	if err := fs.Parse(args); err != nil {
		return err
	}

	td, err := input.load()
	if err != nil {
		return err
	}
	n := len(td.T) - *holdout
	if *holdout <= 0 || n <= 0 {
		return fmt.Errorf("holdout %d with %d points, %w", *holdout, len(td.T), ErrInvalidHoldout)
	}
	trainT, trainY := td.T[:n], td.Y[:n]
	testY := td.Y[n:]

	f, err := a.forecaster()
	if err != nil {
		return err
	}

	var res *forecaster.Results
	switch *method {
	case "arima":
		m, err := f.AutoARIMA(ctx, trainT, trainY)
		if err != nil {
			return err
		}
		res, err = f.ARIMAForecast(ctx, m, *holdout)
		if err != nil {
			return err
		}
	case "stl":
		res, _, err = f.STLForecast(ctx, trainT, trainY, *stl.frequency, *holdout, stl.options())
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s, %w", *method, ErrUnknownMethod)
	}

	scores, err := stats.NewScores(res.Forecast, testY)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "method\tholdout\tmse\trmse\tmape\n")
	fmt.Fprintf(tw, "%s\t%d\t%.5f\t%.5f\t%.5f\n", res.Method, *holdout, scores.MSE, scores.RMSE, scores.MAPE)
	return tw.Flush()
}

func runCheck(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := a.forecaster()
	if err != nil {
		return err
	}
	res, err := f.Check(ctx)
	if res != nil {
		fmt.Fprintf(a.stdout, "%s\n", res.RVersion)
		tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		for _, pkg := range slices.Sorted(maps.Keys(res.Packages)) {
			version := res.Packages[pkg]
			if version == "" {
				version = "missing"
			}
			fmt.Fprintf(tw, "%s\t%s\n", pkg, version)
		}
		if flushErr := tw.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}
	return err
}

func printResults(w io.Writer, res *forecaster.Results) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "time\tforecast")
	for _, interval := range res.Intervals {
		fmt.Fprintf(tw, "\tlo%g\thi%g", interval.Level, interval.Level)
	}
	fmt.Fprintln(tw)
	for i, t := range res.T {
		fmt.Fprintf(tw, "%s\t%.4f", t.Format(time.RFC3339), res.Forecast[i])
		for _, interval := range res.Intervals {
			fmt.Fprintf(tw, "\t%.4f\t%.4f", interval.Lower[i], interval.Upper[i])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func printDecomposition(w io.Writer, d *forecaster.Decomposition) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tobserved\tseasonal\ttrend\tremainder")
	for i, t := range d.T {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", t.Format(time.RFC3339), d.Observed[i], d.Seasonal[i], d.Trend[i], d.Remainder[i])
	}
	return tw.Flush()
}
