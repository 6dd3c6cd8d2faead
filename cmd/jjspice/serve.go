package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edp1096/jj-spice/pkg/metrics"
	"github.com/edp1096/jj-spice/pkg/runner"
	"github.com/edp1096/jj-spice/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP simulation server",
	Long:  `Serves POST /simulate, GET /metrics and GET /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		logger := newLogger(cfg)
		m := metrics.New()
		handler := server.NewHandler(runner.New(cfg, logger, m), m, logger)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting jjspice server", "addr", srv.Addr, "solver", cfg.Solver)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "Port to listen on")
}
