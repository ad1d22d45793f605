package main

import (
	"fmt"
	"log/slog"
	"os"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/aouyang1/go-forecaster-server/config"
	"github.com/spf13/cobra"
)

func newPlotCmd(a *app) *cobra.Command {
	var input, out string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the history and forecast of a request file as html",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.forecast(cmd, input)
			if err != nil {
				return err
			}

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("unable to create plot file, %w", err)
			}
			defer file.Close()

			if err := forecaster.RenderPlot(file, res); err != nil {
				return fmt.Errorf("unable to render plot, %w", err)
			}
			slog.Info("wrote forecast plot", "path", out, "points", len(res.Points))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "request file, - reads stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "forecast.html", "html output file")
	cmd.Flags().Int("default-horizon", config.DefaultHorizon, "forecast length when the request omits it")
	return cmd
}
