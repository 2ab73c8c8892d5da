package forecaster

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-rforecaster/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsInvBoxCox(t *testing.T) {
	raw := []float64{100, 110, 121}
	lower := []float64{90, 95, 100}
	upper := []float64{110, 125, 140}

	transform := func(y []float64) []float64 {
		out, err := stats.BoxCox(y, 0)
		require.NoError(t, err)
		return out
	}

	res := &Results{
		T: []time.Time{
			time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(1961, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(1961, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Forecast:  transform(raw),
		Intervals: []Interval{{Level: 80, Lower: transform(lower), Upper: transform(upper)}},
		Method:    "ARIMA(0,1,1)",
	}

	inv := res.InvBoxCox(0)
	assert.InDeltaSlice(t, raw, inv.Forecast, 1e-9)
	assert.Equal(t, res.T, inv.T)
	assert.Equal(t, res.Method, inv.Method)

	interval, ok := inv.Interval(80)
	require.True(t, ok)
	assert.InDeltaSlice(t, lower, interval.Lower, 1e-9)
	assert.InDeltaSlice(t, upper, interval.Upper, 1e-9)

	// the original results are untouched
	assert.InDelta(t, math.Log(100), res.Forecast[0], 1e-9)
}
