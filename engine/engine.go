package engine

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var ErrMalformedOutput = errors.New("malformed engine output")

const (
	ProcAutoARIMA   = "auto_arima"
	ProcARIMA       = "arima"
	ProcForecast    = "forecast"
	ProcSTL         = "stl"
	ProcSTLForecast = "stl_forecast"
	ProcCheck       = "check"

	DefaultRscriptPath = "Rscript"
)

// RequiredPackages lists the engine packages the procedures load
var RequiredPackages = []string{"forecast", "jsonlite"}

//go:embed scripts/*.R
var scripts embed.FS

// Options configures how the engine is launched
type Options struct {
	RscriptPath   string        `json:"rscript_path"`
	Timeout       time.Duration `json:"timeout"`
	RateLimit     float64       `json:"rate_limit"` // launches per second, 0 is unlimited
	Burst         int           `json:"burst"`
	Retries       uint64        `json:"retries"`
	RetryInterval time.Duration `json:"retry_interval"`
}

// NewDefaultOptions returns a set of default engine options
func NewDefaultOptions() *Options {
	return &Options{
		RscriptPath:   DefaultRscriptPath,
		Timeout:       2 * time.Minute,
		Burst:         1,
		Retries:       2,
		RetryInterval: 500 * time.Millisecond,
	}
}

// Engine invokes procedures of the statistical engine through a Runner
type Engine struct {
	runner  Runner
	opt     *Options
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates an engine using the provided runner. If no runner is provided an Rscript
// runner is created from the options, and if no options are provided a default is used.
func New(runner Runner, opt *Options) *Engine {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if runner == nil {
		runner = NewRscript(opt.RscriptPath)
	}

	limit := rate.Inf
	if opt.RateLimit > 0 {
		limit = rate.Limit(opt.RateLimit)
	}
	burst := opt.Burst
	if burst < 1 {
		burst = 1
	}

	return &Engine{
		runner:  runner,
		opt:     opt,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.With().Str("component", "engine").Logger(),
	}
}

// Script returns the full source run for a procedure
func Script(procedure string) ([]byte, error) {
	prelude, err := scripts.ReadFile("scripts/prelude.R")
	if err != nil {
		return nil, err
	}
	body, err := scripts.ReadFile("scripts/" + procedure + ".R")
	if err != nil {
		return nil, fmt.Errorf("unknown procedure %s, %w", procedure, err)
	}
	script := fmt.Appendf(nil, "# procedure: %s\n", procedure)
	script = append(script, prelude...)
	script = append(script, '\n')
	script = append(script, body...)
	return script, nil
}

// ProcedureOf returns the procedure name a script produced by Script was built for
func ProcedureOf(script []byte) string {
	header, _, _ := bytes.Cut(script, []byte("\n"))
	name, ok := bytes.CutPrefix(header, []byte("# procedure: "))
	if !ok {
		return ""
	}
	return string(name)
}

// Call runs a procedure with the request document and decodes its output into resp
func (e *Engine) Call(ctx context.Context, procedure string, req *Request, resp any) error {
	script, err := Script(procedure)
	if err != nil {
		return err
	}
	input, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("unable to encode %s request, %w", procedure, err)
	}

	if e.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opt.Timeout)
		defer cancel()
	}

	logger := e.logger.With().Str("procedure", procedure).Logger()
	start := time.Now()

	var output []byte
	attempt := 0
	operation := func() error {
		attempt++
		if err := e.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter error: %w", err))
		}

		var err error
		output, err = e.runner.Run(ctx, script, input)
		if err == nil {
			return nil
		}
		if isPermanent(ctx, err) {
			return backoff.Permanent(err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("engine launch failed, retrying")
		return err
	}

	if err := backoff.Retry(operation, e.backoff(ctx)); err != nil {
		return fmt.Errorf("%s failed, %w", procedure, err)
	}
	logger.Debug().Dur("elapsed", time.Since(start)).Int("attempts", attempt).Msg("engine call complete")

	if err := json.Unmarshal(output, resp); err != nil {
		return fmt.Errorf("unable to decode %s output, %v, %w", procedure, err, ErrMalformedOutput)
	}
	return nil
}

func (e *Engine) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if e.opt.RetryInterval > 0 {
		exp.InitialInterval = e.opt.RetryInterval
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, e.opt.Retries), ctx)
}

func isPermanent(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, ErrScriptFailed) ||
		errors.Is(err, ErrEngineUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
