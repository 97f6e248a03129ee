package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/config"
	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/adapters/kafka"
	"github.com/aretw0/epinet/pkg/adapters/redis"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/observability"
)

// App bundles a Service with the optional infrastructure it was wired to.
type App struct {
	Service *epinet.Service
	Metrics *observability.Metrics
	Logger  *slog.Logger

	closers []func() error
}

// NewLogger builds the logger described by cfg.Log.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, logging.Format(cfg.Format)), nil
}

// NewApp creates a Service from cfg. Redis locking and Kafka publishing are
// enabled when their addresses are configured.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...epinet.Option) (*App, error) {
	app := &App{
		Metrics: observability.NewMetrics(),
		Logger:  logger,
	}

	opts := []epinet.Option{
		epinet.WithLogger(logger),
		epinet.WithParams(cfg.Params),
		epinet.WithBounds(cfg.Bounds),
		epinet.WithLimits(epinet.Limits{
			MinPopulation:    cfg.Sim.MinPopulation,
			MaxPopulation:    cfg.Sim.MaxPopulation,
			MaxDaysPerStep:   cfg.Sim.MaxDaysPerStep,
			TimeseriesWindow: cfg.Sim.TimeseriesWindow,
		}),
		epinet.WithHooks(app.Metrics.Hooks()),
	}
	if cfg.Sim.Seed != 0 {
		opts = append(opts, epinet.WithSeed(cfg.Sim.Seed))
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, epinet.WithHooks(debugHooks(logger)))
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		opts = append(opts,
			epinet.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)),
			epinet.WithLockTTL(cfg.Redis.LockTTL),
		)
		logger.Info("Distributed locking enabled", "redis", cfg.Redis.Addr)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		opts = append(opts, epinet.WithPublisher(
			kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, kafka.WithLogger(logger)),
		))
		logger.Info("Snapshot publishing enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	svc, err := epinet.New(append(opts, extra...)...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing service: %w", err)
	}
	app.Service = svc
	app.closers = append([]func() error{svc.Close}, app.closers...)
	return app, nil
}

// Close releases everything NewApp opened, service first.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// debugHooks logs every lifecycle event at debug level.
func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphGenerated: func(_ context.Context, e *domain.GraphEvent) {
			logger.Debug("graph_generated", "graph_id", e.GraphID, "n", e.Nodes, "m", e.Edges, "seeded", e.Seeded)
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			logger.Debug("step",
				"sim_id", e.SimulationID,
				"day", e.Day,
				"exposed", e.Transitions.Exposed,
				"infectious", e.Transitions.Infectious,
				"quarantined", e.Transitions.Quarantined,
				"recovered", e.Transitions.Recovered+e.Transitions.Released,
				"duration", e.Duration,
			)
		},
		OnLockdown: func(_ context.Context, e *domain.PolicyEvent) {
			logger.Debug("lockdown", "sim_id", e.SimulationID, "day", e.Day)
		},
		OnTerminate: func(_ context.Context, e *domain.PolicyEvent) {
			logger.Debug("terminated", "sim_id", e.SimulationID, "day", e.Day)
		},
	}
}
