package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/weave"
	httpAdapter "github.com/aretw0/weave/pkg/adapters/http"
	"github.com/aretw0/weave/pkg/observability"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the Weave engine as a JSON API over HTTP: class catalog, resolution,
validation, runs, stored prompts, run events over SSE and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := target(cmd, args)
			port, _ := cmd.Flags().GetString("port")

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			streams := httpAdapter.NewStreamManager(logger)

			engine, err := weave.New(dir, append(engineOptions(cmd, logger),
				weave.WithLifecycleHooks(streams.Hooks()),
				weave.WithMetrics(observability.NewMetrics(reg)),
			)...)
			if err != nil {
				return fmt.Errorf("error initializing weave: %w", err)
			}

			sessions, closeStore, err := newSessions(cmd, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := &http.Server{
				Addr: ":" + port,
				Handler: httpAdapter.NewHandler(engine,
					httpAdapter.WithSessions(sessions),
					httpAdapter.WithStreams(streams),
					httpAdapter.WithGatherer(reg),
					httpAdapter.WithLogger(logger),
				),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				fmt.Fprintf(cmd.OutOrStdout(), "Starting Weave Server on %s\n", srv.Addr)
				fmt.Fprintf(cmd.OutOrStdout(), "Serving prompt from: %s\n", dir)
				serverErrors <- srv.ListenAndServe()
			}()

			// Channel to listen for interrupt or terminate signals.
			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				logger.Info("Start shutdown", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Weave Server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	addStoreFlags(cmd, false, "")
	return cmd
}
