package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/aouyang1/go-forecaster-server/config"
	"github.com/aouyang1/go-forecaster-server/server"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var ErrUnknownProfile = errors.New("unknown profile mode, expected cpu or mem")

// configFlags maps command flags onto the config keys they override
var configFlags = map[string]string{
	"addr":            "server.addr",
	"admin-addr":      "server.admin_addr",
	"default-horizon": "forecast.default_horizon",
}

// app holds the state shared by every subcommand of one invocation
type app struct {
	configPath  string
	profileMode string
	profileDir  string

	cfg      *config.Config
	profiler interface{ Stop() }
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "forecasterd",
		Short: "Daily time series forecasting service",
		Long: `forecasterd fits a trend, seasonality and holiday model to a history of dated values
and forecasts the following calendar days. It serves POST /predict over http and can run the
same forecast offline from a request file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.stopProfile()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&a.profileMode, "profile", "", "write a cpu or mem profile")
	flags.StringVar(&a.profileDir, "profile-dir", ".", "directory for profile output")

	rootCmd.AddCommand(
		newServeCmd(a),
		newPredictCmd(a),
		newPlotCmd(a),
		newSimulateCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	overrides := make(map[string]any)
	for flag, key := range configFlags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(a.configPath, overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	switch a.profileMode {
	case "":
	case "cpu":
		a.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(a.profileDir), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		a.profiler = profile.Start(profile.MemProfile, profile.ProfilePath(a.profileDir), profile.NoShutdownHook, profile.Quiet)
	default:
		return fmt.Errorf("%q, %w", a.profileMode, ErrUnknownProfile)
	}
	return nil
}

func (a *app) stopProfile() {
	if a.profiler != nil {
		a.profiler.Stop()
		a.profiler = nil
	}
}

func (a *app) newEngine() (*forecaster.Engine, error) {
	opt, err := a.cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	return forecaster.New(opt, nil)
}

// readRequest loads a predict request body from path, or stdin when path is "-"
func (a *app) readRequest(cmd *cobra.Command, path string) ([]forecaster.Observation, int, error) {
	var body []byte
	var err error
	if path == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("unable to read request, %w", err)
	}

	req, err := server.DecodeForecastRequest(body)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to decode request, %w", err)
	}
	horizon, err := req.Horizon(a.cfg.Forecast.DefaultHorizon)
	if err != nil {
		return nil, 0, err
	}
	obs, err := req.Observations()
	if err != nil {
		return nil, 0, err
	}
	return obs, horizon, nil
}
