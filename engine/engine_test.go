package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	outputs [][]byte
	errs    []error

	scripts [][]byte
	inputs  [][]byte
}

func (f *fakeRunner) Run(ctx context.Context, script, input []byte) ([]byte, error) {
	idx := len(f.inputs)
	f.scripts = append(f.scripts, script)
	f.inputs = append(f.inputs, input)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.outputs) {
		return f.outputs[idx], nil
	}
	return f.outputs[len(f.outputs)-1], nil
}

func testOptions() *Options {
	opt := NewDefaultOptions()
	opt.RetryInterval = time.Millisecond
	return opt
}

func TestScript(t *testing.T) {
	for _, proc := range []string{ProcAutoARIMA, ProcARIMA, ProcForecast, ProcSTL, ProcSTLForecast, ProcCheck} {
		script, err := Script(proc)
		require.NoError(t, err, proc)
		assert.Contains(t, string(script), "respond <- function(x)", proc)
		assert.Contains(t, string(script), "respond(", proc)
	}

	_, err := Script("holt_winters")
	assert.Error(t, err)
}

func TestFloats(t *testing.T) {
	out, err := json.Marshal(&Request{Y: []float64{1.5, math.NaN(), math.Inf(1), -2}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"y":[1.5,null,null,-2]`)

	var f Floats
	require.NoError(t, json.Unmarshal([]byte(`[1,null,3.25]`), &f))
	require.Len(t, f, 3)
	assert.Equal(t, 1.0, f[0])
	assert.True(t, math.IsNaN(f[1]))
	assert.Equal(t, 3.25, f[2])

	out, err = json.Marshal(struct {
		AIC Float `json:"aic"`
		BIC Float `json:"bic"`
	}{AIC: Float(math.NaN()), BIC: 12.5})
	require.NoError(t, err)
	assert.Equal(t, `{"aic":null,"bic":12.5}`, string(out))
}

func TestCallRetries(t *testing.T) {
	canned := []byte(`{"r_version":"4.3.1","packages":{"forecast":"8.21","jsonlite":""}}`)
	testData := map[string]struct {
		errs     []error
		retries  uint64
		attempts int
		err      error
	}{
		"success": {
			attempts: 1,
		},
		"transient then success": {
			errs:     []error{errors.New("fork/exec: resource temporarily unavailable")},
			retries:  2,
			attempts: 2,
		},
		"script errors are not retried": {
			errs:     []error{&ScriptError{ExitCode: 1, Message: "Error in stl: series is not periodic"}},
			retries:  2,
			attempts: 1,
			err:      ErrScriptFailed,
		},
		"missing engine is not retried": {
			errs:     []error{ErrEngineUnavailable},
			retries:  2,
			attempts: 1,
			err:      ErrEngineUnavailable,
		},
		"retries exhausted": {
			errs: []error{
				errors.New("transient"),
				errors.New("transient"),
			},
			retries:  1,
			attempts: 2,
			err:      errors.New("transient"),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			runner := &fakeRunner{outputs: [][]byte{canned}, errs: td.errs}
			opt := testOptions()
			opt.Retries = td.retries
			e := New(runner, opt)

			res, err := e.Check(context.Background())
			assert.Len(t, runner.inputs, td.attempts)
			if td.err != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), td.err.Error())
				assert.Contains(t, err.Error(), ProcCheck)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "4.3.1", res.RVersion)
			assert.Equal(t, []string{"jsonlite"}, res.Missing())
		})
	}
}

func TestCallErrorSentinels(t *testing.T) {
	runner := &fakeRunner{errs: []error{&ScriptError{ExitCode: 1, Message: "boom"}}, outputs: [][]byte{nil}}
	e := New(runner, testOptions())
	_, err := e.STL(context.Background(), []float64{1, 2, 3, 4}, STLArgs{Frequency: 2, SWindow: "periodic"})
	assert.ErrorIs(t, err, ErrScriptFailed)

	var scriptErr *ScriptError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "boom", scriptErr.Message)
}

func TestCallCanceled(t *testing.T) {
	runner := &fakeRunner{outputs: [][]byte{[]byte(`{}`)}}
	e := New(runner, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Check(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.inputs)
}

func TestAutoARIMARequest(t *testing.T) {
	runner := &fakeRunner{outputs: [][]byte{[]byte(`{
		"model": "WAoAAAAC",
		"arma": [1, 0, 0, 0, 1, 1, 0],
		"coef": {"ar1": 0.42},
		"aic": 10.5, "aicc": 11.0, "bic": 12.25, "sigma2": 0.5, "loglik": -3.1,
		"fitted": [1, 2, 3],
		"residuals": [0, null, 0]
	}`)}}
	e := New(runner, testOptions())

	res, err := e.AutoARIMA(context.Background(), []float64{1, 2, 3}, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "WAoAAAAC", res.Model)
	assert.Equal(t, []int{1, 0, 0, 0, 1, 1, 0}, res.Arma)
	assert.Equal(t, map[string]float64{"ar1": 0.42}, res.Coef)
	assert.Equal(t, Float(12.25), res.BIC)
	assert.True(t, math.IsNaN(res.Residuals[1]))

	require.Len(t, runner.scripts, 1)
	assert.Contains(t, string(runner.scripts[0]), "auto.arima(series(input), seasonal = isTRUE(input$seasonal))")

	var req map[string]any
	require.NoError(t, json.Unmarshal(runner.inputs[0], &req))
	assert.Equal(t, []any{1.0, 2.0, 3.0}, req["y"])
	assert.Equal(t, false, req["seasonal"])
	assert.NotContains(t, req, "frequency")
}

func TestMalformedOutput(t *testing.T) {
	testData := map[string]struct {
		output string
		call   func(e *Engine) error
	}{
		"not json": {
			output: `Error: not json`,
			call: func(e *Engine) error {
				_, err := e.Check(context.Background())
				return err
			},
		},
		"short arma": {
			output: `{"model": "x", "arma": [1, 0, 1]}`,
			call: func(e *Engine) error {
				_, err := e.ARIMA(context.Background(), []float64{1, 2}, 1, 1, 1, 0)
				return err
			},
		},
		"forecast horizon mismatch": {
			output: `{"mean": [1], "levels": [80, 95], "lower": [[0], [0]], "upper": [[2], [2]]}`,
			call: func(e *Engine) error {
				_, err := e.Forecast(context.Background(), "x", 2, nil)
				return err
			},
		},
		"forecast missing level": {
			output: `{"mean": [1], "levels": [80], "lower": [[0]], "upper": [[2]]}`,
			call: func(e *Engine) error {
				_, err := e.Forecast(context.Background(), "x", 1, nil)
				return err
			},
		},
		"stl forecast missing arma": {
			output: `{"mean": [1], "levels": [80, 95], "lower": [[0], [0]], "upper": [[2], [2]]}`,
			call: func(e *Engine) error {
				_, err := e.STLForecast(context.Background(), []float64{1, 2, 3, 4}, STLArgs{Frequency: 2}, 1, nil)
				return err
			},
		},
		"decomposition length mismatch": {
			output: `{"seasonal": [1, 2], "trend": [1, 2, 3], "remainder": [1, 2, 3]}`,
			call: func(e *Engine) error {
				_, err := e.STL(context.Background(), []float64{1, 2, 3}, STLArgs{Frequency: 2})
				return err
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			e := New(&fakeRunner{outputs: [][]byte{[]byte(td.output)}}, testOptions())
			assert.ErrorIs(t, td.call(e), ErrMalformedOutput)
		})
	}
}

func TestSTLRequest(t *testing.T) {
	runner := &fakeRunner{outputs: [][]byte{[]byte(`{
		"method": "STL +  ARIMA(0,1,1)",
		"mean": [5, 6],
		"levels": [90],
		"lower": [[4, 5]],
		"upper": [[6, 7]],
		"arma": [0, 1, 0, 0, 1, 1, 0]
	}`)}}
	e := New(runner, testOptions())

	args := STLArgs{Frequency: 4, SWindow: "7", TWindow: 9, Robust: true}
	res, err := e.STLForecast(context.Background(), []float64{1, 2, 3, 4, 5, 6, 7, 8}, args, 2, []float64{90})
	require.NoError(t, err)
	assert.Equal(t, Floats{5, 6}, res.Mean)
	assert.True(t, strings.HasPrefix(res.Method, "STL"))

	var req Request
	require.NoError(t, json.Unmarshal(runner.inputs[0], &req))
	assert.Equal(t, 4, req.Frequency)
	assert.Equal(t, 2, req.Horizon)
	assert.Equal(t, "7", req.SWindow)
	assert.Equal(t, 9, req.TWindow)
	assert.True(t, req.Robust)
	assert.Equal(t, []float64{90}, req.Levels)
}

func TestProcedureOf(t *testing.T) {
	script, err := Script(ProcSTLForecast)
	require.NoError(t, err)
	assert.Equal(t, ProcSTLForecast, ProcedureOf(script))
	assert.Equal(t, "", ProcedureOf([]byte("library(forecast)\n")))
}
