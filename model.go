package forecaster

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-rforecaster/engine"
)

var ErrNoModelState = errors.New("model has no engine state")

const (
	MethodAutoARIMA = "auto.arima"
	MethodARIMA     = "Arima"
)

// Order is the non-seasonal order of an ARIMA model
type Order struct {
	P int `json:"p"` // autoregressive terms
	D int `json:"d"` // non-seasonal differences
	Q int `json:"q"` // moving average terms
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// SeasonalOrder is the seasonal part of an ARIMA model. It is all zeros for non-seasonal fits.
type SeasonalOrder struct {
	P      int `json:"p"`
	D      int `json:"d"`
	Q      int `json:"q"`
	Period int `json:"period"`
}

// orderFromArma reads the model order from the engine's arma vector which is laid out as
// (p, q, P, Q, period, d, D).
func orderFromArma(arma []int) (Order, SeasonalOrder, error) {
	if len(arma) < 7 {
		return Order{}, SeasonalOrder{}, fmt.Errorf("arma has %d elements, %w", len(arma), engine.ErrMalformedOutput)
	}
	order := Order{P: arma[0], D: arma[5], Q: arma[1]}
	seasonal := SeasonalOrder{P: arma[2], D: arma[6], Q: arma[3], Period: arma[4]}
	return order, seasonal, nil
}

// Model is a fitted ARIMA model. State is the engine's serialized model object which is opaque
// to this package and is handed back to the engine to forecast. A Model can be marshaled to
// JSON and reused later without refitting.
type Model struct {
	Method        string        `json:"method"`
	Order         Order         `json:"order"`
	SeasonalOrder SeasonalOrder `json:"seasonal_order"`
	Frequency     int           `json:"frequency"`

	Coefficients map[string]float64 `json:"coefficients"`
	AIC          engine.Float       `json:"aic"`
	AICc         engine.Float       `json:"aicc"`
	BIC          engine.Float       `json:"bic"`
	Sigma2       engine.Float       `json:"sigma2"`
	LogLik       engine.Float       `json:"loglik"`

	T         []time.Time   `json:"time"`
	Fitted    engine.Floats `json:"fitted"`
	Residuals engine.Floats `json:"residuals"`

	State string `json:"state"`
}

func newModel(method string, frequency int, t []time.Time, resp *engine.FitResponse) (*Model, error) {
	order, seasonal, err := orderFromArma(resp.Arma)
	if err != nil {
		return nil, err
	}
	tCopy := make([]time.Time, len(t))
	copy(tCopy, t)
	return &Model{
		Method:        method,
		Order:         order,
		SeasonalOrder: seasonal,
		Frequency:     frequency,
		Coefficients:  resp.Coef,
		AIC:           resp.AIC,
		AICc:          resp.AICc,
		BIC:           resp.BIC,
		Sigma2:        resp.Sigma2,
		LogLik:        resp.LogLik,
		T:             tCopy,
		Fitted:        resp.Fitted,
		Residuals:     resp.Residuals,
		State:         resp.Model,
	}, nil
}

// TrainEndTime returns the time of the last observation the model was fit on
func (m *Model) TrainEndTime() time.Time {
	if len(m.T) == 0 {
		return time.Time{}
	}
	return m.T[len(m.T)-1]
}

// TablePrint writes a human readable summary of the model
func (m *Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%s: %s\n", prefix, m.Method, m.Order); err != nil {
		return err
	}
	if m.SeasonalOrder.Period > 1 && (m.SeasonalOrder.P > 0 || m.SeasonalOrder.D > 0 || m.SeasonalOrder.Q > 0) {
		if _, err := fmt.Fprintf(w, "%s%sSeasonal: (%d,%d,%d)[%d]\n", prefix, indent,
			m.SeasonalOrder.P, m.SeasonalOrder.D, m.SeasonalOrder.Q, m.SeasonalOrder.Period); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sTraining End Time: %s\n", prefix, indent, m.TrainEndTime()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sAIC: %.3f AICc: %.3f BIC: %.3f\n", prefix, indent, m.AIC, m.AICc, m.BIC); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sSigma^2: %.5f Log Likelihood: %.3f\n", prefix, indent, m.Sigma2, m.LogLik); err != nil {
		return err
	}
	if len(m.Coefficients) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s%sCoefficients:\n", prefix, indent); err != nil {
		return err
	}
	labels := make([]string, 0, len(m.Coefficients))
	for label := range m.Coefficients {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, label := range labels {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%s\t%.5f\t\n", prefix, indent, indent, label, m.Coefficients[label]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
