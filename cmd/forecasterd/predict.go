package main

import (
	"fmt"
	"os"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/aouyang1/go-forecaster-server/config"
	"github.com/aouyang1/go-forecaster-server/server"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type predictFlags struct {
	input     string
	showModel bool
	modelOut  string
}

func newPredictCmd(a *app) *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast a request file and print the response",
		Long: `predict runs the forecast for a POST /predict request body and prints the response body
to stdout. A failed forecast prints the error body and exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPredict(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "request file, - reads stdin")
	cmd.Flags().BoolVar(&f.showModel, "model", false, "print the fit model to stderr")
	cmd.Flags().StringVar(&f.modelOut, "model-out", "", "write the fit model as json to this file")
	cmd.Flags().Int("default-horizon", config.DefaultHorizon, "forecast length when the request omits it")
	return cmd
}

func (a *app) runPredict(cmd *cobra.Command, f *predictFlags) error {
	out := cmd.OutOrStdout()

	res, err := a.forecast(cmd, f.input)
	if err != nil {
		body, _ := json.Marshal(server.ErrorResponse{Error: err.Error()})
		fmt.Fprintln(out, string(body))
		return err
	}

	body, err := json.MarshalIndent(server.ForecastResponse{Prediction: res.Points}, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode response, %w", err)
	}
	if _, err := fmt.Fprintln(out, string(body)); err != nil {
		return err
	}

	sm, ok := res.Model.(*forecaster.SeriesModel)
	if !ok || (!f.showModel && f.modelOut == "") {
		return nil
	}
	m, err := sm.Forecast().Model()
	if err != nil {
		return err
	}
	if f.showModel {
		if err := m.TablePrint(cmd.ErrOrStderr(), "", "  "); err != nil {
			return err
		}
		eq, err := sm.Forecast().ModelEq()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), eq)
	}
	if f.modelOut != "" {
		modelBody, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("unable to encode model, %w", err)
		}
		if err := os.WriteFile(f.modelOut, modelBody, 0o644); err != nil {
			return fmt.Errorf("unable to write model, %w", err)
		}
	}
	return nil
}

func (a *app) forecast(cmd *cobra.Command, input string) (*forecaster.Result, error) {
	obs, horizon, err := a.readRequest(cmd, input)
	if err != nil {
		return nil, err
	}
	engine, err := a.newEngine()
	if err != nil {
		return nil, err
	}
	return engine.Run(cmd.Context(), obs, horizon)
}
