package main

import (
	"fmt"
	"time"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/aouyang1/go-forecaster-server/timedataset"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type simulateFlags struct {
	start   string
	days    int
	horizon int
	base    float64
	slope   float64
	weekly  float64
	yearly  float64
	noise   float64
	seed    uint64
}

func newSimulateCmd() *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print a request body with a simulated daily history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := simulateRequest(f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.start, "start", "2022-01-01", "first day of the history")
	flags.IntVar(&f.days, "days", 730, "number of days of history")
	flags.IntVar(&f.horizon, "horizon", 90, "forecastLength of the request")
	flags.Float64Var(&f.base, "base", 100, "starting level")
	flags.Float64Var(&f.slope, "slope", 0.1, "growth per day")
	flags.Float64Var(&f.weekly, "weekly", 10, "weekly seasonality amplitude")
	flags.Float64Var(&f.yearly, "yearly", 25, "yearly seasonality amplitude")
	flags.Float64Var(&f.noise, "noise", 2, "noise standard deviation")
	flags.Uint64Var(&f.seed, "seed", 1, "noise seed")
	return cmd
}

type simulatedRequest struct {
	Features       []forecaster.Point `json:"features"`
	ForecastLength int                `json:"forecastLength"`
}

func simulateRequest(f *simulateFlags) ([]byte, error) {
	start, err := time.Parse(forecaster.DateLayout, f.start)
	if err != nil {
		return nil, fmt.Errorf("unable to parse start, %w", err)
	}
	if f.days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", f.days)
	}

	t := timedataset.GenerateDailyT(start, f.days)
	y := timedataset.GenerateConstY(f.days, f.base).
		Add(timedataset.GenerateLinearY(t, f.slope)).
		Add(timedataset.GenerateWaveY(t, f.weekly, 7*24*time.Hour, 1)).
		Add(timedataset.GenerateWaveY(t, f.yearly, time.Duration(365.25*24*float64(time.Hour)), 1)).
		Add(timedataset.GenerateNoise(f.days, f.noise, f.seed))

	req := simulatedRequest{
		Features:       make([]forecaster.Point, len(t)),
		ForecastLength: f.horizon,
	}
	for i, tPnt := range t {
		req.Features[i] = forecaster.Point{Date: tPnt.Format(forecaster.DateLayout), Value: y[i]}
	}
	return json.Marshal(req)
}
