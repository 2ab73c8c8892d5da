package forecaster

import (
	"time"

	"github.com/aouyang1/go-rforecaster/engine"
	"github.com/aouyang1/go-rforecaster/stats"
)

// Interval is the lower and upper bound of a forecast at a confidence level in percent
type Interval struct {
	Level float64   `json:"level"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// Results holds a forecast indexed by the time points following the training data
type Results struct {
	T         []time.Time `json:"time"`
	Forecast  []float64   `json:"forecast"`
	Intervals []Interval  `json:"intervals"`
	Method    string      `json:"method"`
}

func newResults(t []time.Time, resp *engine.ForecastResponse) *Results {
	r := &Results{
		T:         t,
		Forecast:  resp.Mean,
		Intervals: make([]Interval, len(resp.Levels)),
		Method:    resp.Method,
	}
	for i, level := range resp.Levels {
		r.Intervals[i] = Interval{
			Level: level,
			Lower: resp.Lower[i],
			Upper: resp.Upper[i],
		}
	}
	return r
}

// Interval returns the bounds at a confidence level
func (r *Results) Interval(level float64) (Interval, bool) {
	for _, interval := range r.Intervals {
		if interval.Level == level {
			return interval, true
		}
	}
	return Interval{}, false
}

// InvBoxCox returns a copy of the results with the forecast and bounds mapped back from a
// box-cox transformed scale
func (r *Results) InvBoxCox(lambda float64) *Results {
	out := &Results{
		T:         make([]time.Time, len(r.T)),
		Forecast:  stats.InvBoxCox(r.Forecast, lambda),
		Intervals: make([]Interval, len(r.Intervals)),
		Method:    r.Method,
	}
	copy(out.T, r.T)
	for i, interval := range r.Intervals {
		out.Intervals[i] = Interval{
			Level: interval.Level,
			Lower: stats.InvBoxCox(interval.Lower, lambda),
			Upper: stats.InvBoxCox(interval.Upper, lambda),
		}
	}
	return out
}

// Decomposition holds the seasonal, trend and remainder components of a series indexed by the
// same time points as the input
type Decomposition struct {
	T         []time.Time `json:"time"`
	Observed  []float64   `json:"observed"`
	Seasonal  []float64   `json:"seasonal"`
	Trend     []float64   `json:"trend"`
	Remainder []float64   `json:"remainder"`
	Weights   []float64   `json:"weights"`
}

// SeasonallyAdjusted returns the observed series with the seasonal component removed
func (d *Decomposition) SeasonallyAdjusted() []float64 {
	adjusted := make([]float64, len(d.Observed))
	for i := range d.Observed {
		adjusted[i] = d.Observed[i] - d.Seasonal[i]
	}
	return adjusted
}
