package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aouyang1/go-forecaster-server/config"
	"github.com/aouyang1/go-forecaster-server/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forecasts over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}
	cmd.Flags().String("addr", server.DefaultAddr, "main listener address")
	cmd.Flags().String("admin-addr", server.DefaultAdminAddr, "metrics and health listener address, empty disables")
	cmd.Flags().Int("default-horizon", config.DefaultHorizon, "forecast length when a request omits it")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := a.newEngine()
	if err != nil {
		return err
	}
	srv, err := server.New(serverOptions(a.cfg), engine)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func serverOptions(cfg *config.Config) *server.Options {
	opt := &server.Options{
		Addr:            cfg.Server.Addr,
		AdminAddr:       cfg.Server.AdminAddr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		DefaultHorizon:  cfg.Forecast.DefaultHorizon,
		Compress:        cfg.Server.Compress,
	}
	if cfg.Server.AccessLog {
		opt.AccessLog = os.Stdout
	}
	return opt
}
