package forecaster

import (
	"context"
	"fmt"
	"os"

	"github.com/aouyang1/go-rforecaster/engine"
)

func Example_stlForecast() {
	t, y := generateMonthlySeries(36)

	runner := newProcedureRunner(map[string]string{
		engine.ProcSTLForecast: stlForecastResponse,
	})
	f, err := New(runner, nil)
	if err != nil {
		panic(err)
	}

	res, order, err := f.STLForecast(context.Background(), t, y, 12, 2, NewDefaultSTLOptions())
	if err != nil {
		panic(err)
	}
	interval, _ := res.Interval(80)

	fmt.Printf("seasonally adjusted with %s\n", order)
	for i, ts := range res.T {
		fmt.Printf("%s %.1f [%.1f, %.1f]\n", ts.Format("2006-01"), res.Forecast[i], interval.Lower[i], interval.Upper[i])
	}
	// Output:
	// seasonally adjusted with ARIMA(0,1,1)
	// 1952-01 192.5 [180.2, 204.8]
	// 1952-02 185.1 [170.3, 199.9]
}

func Example_autoARIMA() {
	t, y := generateMonthlySeries(36)

	runner := newProcedureRunner(map[string]string{
		engine.ProcAutoARIMA: fitResponse("[2, 1, 0, 0, 1, 1, 0]", 36),
		engine.ProcForecast:  forecastResponse,
	})
	f, err := New(runner, nil)
	if err != nil {
		panic(err)
	}

	m, err := f.AutoARIMA(context.Background(), t, y)
	if err != nil {
		panic(err)
	}
	res, err := f.ARIMAForecast(context.Background(), m, 3)
	if err != nil {
		panic(err)
	}

	fmt.Println(m.Order)
	fmt.Println(res.T[0].Format("2006-01"), res.Forecast)
	// Output:
	// ARIMA(2,1,1)
	// 1952-01 [470.1 492.7 497.9]
}

// Example_rscript runs against an installed R and writes the stl decomposition plot
func Example_rscript() {
	t, y := generateMonthlySeries(48)

	f, err := New(nil, nil)
	if err != nil {
		panic(err)
	}
	if _, err := f.Check(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	file, err := os.Create("examples_stl_components.html")
	if err != nil {
		panic(err)
	}
	defer file.Close()

	if err := f.PlotSTLComponents(context.Background(), file, t, y, 12, NewDefaultSTLOptions()); err != nil {
		panic(err)
	}
}
