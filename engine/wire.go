package engine

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Floats is a numeric vector exchanged with the engine. NaN and infinite values are sent as
// null, which the engine reads as NA, and null values received are decoded back into NaN.
type Floats []float64

func (f Floats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	out := make([]byte, 0, len(f)*8+2)
	out = append(out, '[')
	for i, v := range f {
		if i > 0 {
			out = append(out, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out = append(out, "null"...)
			continue
		}
		out = strconv.AppendFloat(out, v, 'g', -1, 64)
	}
	out = append(out, ']')
	return out, nil
}

func (f *Floats) UnmarshalJSON(data []byte) error {
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	if vals == nil {
		*f = nil
		return nil
	}
	out := make(Floats, len(vals))
	for i, v := range vals {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*f = out
	return nil
}

// Float is a scalar exchanged with the engine where NA and NaN are both null on the wire
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = Float(math.NaN())
		return nil
	}
	*f = Float(*v)
	return nil
}

// Request carries every argument a procedure may read. Procedures ignore fields they do not use.
type Request struct {
	Y         Floats    `json:"y,omitempty"`
	Frequency int       `json:"frequency,omitempty"`
	Horizon   int       `json:"h,omitempty"`
	Levels    []float64 `json:"levels,omitempty"`
	Seasonal  bool      `json:"seasonal"`
	Order     []int     `json:"order,omitempty"`
	Model     string    `json:"model,omitempty"`

	SWindow string `json:"s_window,omitempty"`
	TWindow int    `json:"t_window,omitempty"`
	Robust  bool   `json:"robust"`
}

// FitResponse is a fitted ARIMA model. Model holds the serialized engine object and is only
// meaningful to the engine.
type FitResponse struct {
	Model     string             `json:"model"`
	Arma      []int              `json:"arma"`
	Coef      map[string]float64 `json:"coef"`
	AIC       Float              `json:"aic"`
	AICc      Float              `json:"aicc"`
	BIC       Float              `json:"bic"`
	Sigma2    Float              `json:"sigma2"`
	LogLik    Float              `json:"loglik"`
	Fitted    Floats             `json:"fitted"`
	Residuals Floats             `json:"residuals"`
}

// ForecastResponse holds the point forecasts and one lower/upper bound pair per confidence level.
// Arma is only populated by the STL forecast and describes the model fit on the seasonally
// adjusted series.
type ForecastResponse struct {
	Method string    `json:"method"`
	Mean   Floats    `json:"mean"`
	Levels []float64 `json:"levels"`
	Lower  []Floats  `json:"lower"`
	Upper  []Floats  `json:"upper"`
	Arma   []int     `json:"arma,omitempty"`
}

// DecompositionResponse holds the STL components, each aligned to the input series
type DecompositionResponse struct {
	Seasonal  Floats `json:"seasonal"`
	Trend     Floats `json:"trend"`
	Remainder Floats `json:"remainder"`
	Weights   Floats `json:"weights"`
}

// CheckResponse reports the engine version and installed package versions. A missing package
// has an empty version.
type CheckResponse struct {
	RVersion string            `json:"r_version"`
	Packages map[string]string `json:"packages"`
}
