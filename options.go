package forecaster

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aouyang1/go-rforecaster/engine"
)

const SWindowPeriodic = "periodic"

var (
	ErrInvalidLevel   = errors.New("confidence level must be between 0 and 100")
	ErrInvalidSWindow = errors.New("seasonal window must be periodic or an odd positive number of points")
	ErrInvalidTWindow = errors.New("trend window must not be negative")
)

// Options configures the engine a Forecaster calls and the confidence levels of every forecast
type Options struct {
	EngineOptions *engine.Options `json:"engine_options"`
	Levels        []float64       `json:"levels"`
}

// NewDefaultOptions returns a set of default options requesting 80% and 95% intervals
func NewDefaultOptions() *Options {
	return &Options{
		EngineOptions: engine.NewDefaultOptions(),
		Levels:        []float64{80, 95},
	}
}

func (o *Options) validate() error {
	for _, level := range o.Levels {
		if level <= 0 || level >= 100 {
			return fmt.Errorf("level %.2f, %w", level, ErrInvalidLevel)
		}
	}
	return nil
}

// STLOptions configures a seasonal-trend decomposition. SWindow is the odd seasonal loess span
// in points or "periodic" which averages each sub-series. A TWindow of 0 leaves the trend span to
// the engine's default, and Robust enables outlier resistant fitting.
type STLOptions struct {
	SWindow string `json:"s_window"`
	TWindow int    `json:"t_window"`
	Robust  bool   `json:"robust"`
}

// NewDefaultSTLOptions returns a periodic, robust decomposition
func NewDefaultSTLOptions() *STLOptions {
	return &STLOptions{
		SWindow: SWindowPeriodic,
		Robust:  true,
	}
}

func (o *STLOptions) validate() error {
	if o.TWindow < 0 {
		return fmt.Errorf("t_window %d, %w", o.TWindow, ErrInvalidTWindow)
	}
	if o.SWindow == SWindowPeriodic {
		return nil
	}
	span, err := strconv.Atoi(o.SWindow)
	if err != nil || span < 1 || span%2 == 0 {
		return fmt.Errorf("s_window %q, %w", o.SWindow, ErrInvalidSWindow)
	}
	return nil
}

func (o *STLOptions) args(frequency int) engine.STLArgs {
	return engine.STLArgs{
		Frequency: frequency,
		SWindow:   o.SWindow,
		TWindow:   o.TWindow,
		Robust:    o.Robust,
	}
}
