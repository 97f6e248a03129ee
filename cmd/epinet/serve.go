package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/cli"
	httpAdapter "github.com/aretw0/epinet/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the graph and simulation endpoints over HTTP, along with /metrics
and the OpenAPI document at /openapi.yaml.

With --redis, steps are serialized across replicas by a Redis lock.
With --kafka, every simulated day is published to the snapshot topic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis") {
			cfg.Redis.Addr, _ = cmd.Flags().GetString("redis")
		}
		if cmd.Flags().Changed("kafka") {
			brokers, _ := cmd.Flags().GetString("kafka")
			cfg.Kafka.Brokers = strings.Split(brokers, ",")
		}
		if cmd.Flags().Changed("kafka-topic") {
			cfg.Kafka.Topic, _ = cmd.Flags().GetString("kafka-topic")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		handler, err := httpAdapter.NewHandler(app.Service,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(app.Metrics.Handler()),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		serverErrors := make(chan error, 1)
		go func() {
			limits, params := app.Service.Limits(), app.Service.Params()
			logger.Info("Starting epinet server",
				"addr", srv.Addr,
				"version", epinet.Version,
				"population", fmt.Sprintf("%d-%d", limits.MinPopulation, limits.MaxPopulation),
				"max_days_per_step", limits.MaxDaysPerStep,
				"lockdown_threshold", params.LockdownThreshold,
			)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown...")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("epinet server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8000", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for distributed step locking")
	serveCmd.Flags().String("kafka", "", "Comma-separated Kafka brokers for snapshot publishing")
	serveCmd.Flags().String("kafka-topic", "epinet.snapshots", "Kafka topic for snapshots")
}
