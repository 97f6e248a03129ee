package epinet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/internal/runtime"
	"github.com/aretw0/epinet/pkg/adapters/memory"
	"github.com/aretw0/epinet/pkg/contact"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/geo"
	"github.com/aretw0/epinet/pkg/ids"
	"github.com/aretw0/epinet/pkg/ports"
	"github.com/aretw0/epinet/pkg/session"
)

// Limits bounds what a single request may ask for.
type Limits struct {
	MinPopulation    int
	MaxPopulation    int
	MaxDaysPerStep   int
	TimeseriesWindow int
}

// DefaultLimits returns the limits of the reference deployment.
func DefaultLimits() Limits {
	return Limits{
		MinPopulation:    200,
		MaxPopulation:    20000,
		MaxDaysPerStep:   30,
		TimeseriesWindow: 400,
	}
}

// Status is the public view of a simulation after it was created or stepped.
type Status struct {
	GraphID  string        `json:"graph_id,omitempty"`
	SimID    string        `json:"sim_id"`
	Day      int           `json:"day"`
	Counts   domain.Counts `json:"counts"`
	Message  string        `json:"policy_message"`
	Lockdown bool          `json:"policy_quarantine_on"`
}

// StatusOf summarises sim.
func StatusOf(sim *domain.Simulation) Status {
	return Status{
		SimID:    sim.ID,
		Day:      sim.Day,
		Counts:   sim.Counts(),
		Message:  sim.Message,
		Lockdown: sim.Lockdown,
	}
}

// Service is the high-level entry point of the library.
// It owns the stores, the random source and the epidemic engine.
type Service struct {
	engine    *runtime.Engine
	graphs    ports.GraphStore
	sims      *session.Manager
	ids       ports.IDGenerator
	publisher ports.SnapshotPublisher
	rng       *rand.Rand
	params    domain.Params
	bounds    geo.Bounds
	limits    Limits
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	simStore ports.SimulationStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRand sets the random source used for generation and stepping.
// The generator must be safe for concurrent use if the Service is; see NewRand.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}

// WithSeed is WithRand(NewRand(seed)).
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// WithParams overrides domain.DefaultParams.
func WithParams(p domain.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithBounds overrides the area agents are scattered over (default geo.Islamabad).
func WithBounds(b geo.Bounds) Option {
	return func(s *Service) {
		s.bounds = b
	}
}

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

// WithGraphStore injects a custom GraphStore.
func WithGraphStore(store ports.GraphStore) Option {
	return func(s *Service) {
		s.graphs = store
	}
}

// WithSimulationStore injects a custom SimulationStore.
func WithSimulationStore(store ports.SimulationStore) Option {
	return func(s *Service) {
		s.simStore = store
	}
}

// WithIDGenerator injects a custom IDGenerator.
func WithIDGenerator(gen ports.IDGenerator) Option {
	return func(s *Service) {
		s.ids = gen
	}
}

// WithLocker serializes steps across replicas sharing the same stores.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

// WithLockTTL bounds how long a step may hold the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// WithHooks registers observability hooks. Repeated calls merge.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithPublisher streams every simulated day to p.
func WithPublisher(p ports.SnapshotPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New initializes a Service. Without options it runs on in-memory stores
// with a randomly seeded generator and the default parameters.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		params: domain.DefaultParams(),
		bounds: geo.Islamabad,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if err := s.bounds.Validate(); err != nil {
		return nil, err
	}
	if s.limits.MinPopulation < 1 || s.limits.MaxPopulation < s.limits.MinPopulation || s.limits.MaxDaysPerStep < 1 {
		return nil, fmt.Errorf("invalid limits: %+v", s.limits)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.rng == nil {
		s.rng = NewRand(rand.Uint64())
	}
	if s.ids == nil {
		s.ids = ids.UUID{}
	}
	if s.graphs == nil || s.simStore == nil {
		mem := memory.NewStore()
		if s.graphs == nil {
			s.graphs = mem
		}
		if s.simStore == nil {
			s.simStore = mem
		}
	}

	managerOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(s.locker))
	}
	if s.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(s.lockTTL))
	}
	s.sims = session.NewManager(s.simStore, managerOpts...)

	hooks := s.hooks
	if s.publisher != nil {
		hooks = hooks.Merge(domain.LifecycleHooks{OnStep: s.publish})
	}
	s.engine = runtime.NewEngine(s.params, s.rng,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(deferHooks(hooks)),
	)

	return s, nil
}

func (s *Service) publish(ctx context.Context, e *domain.StepEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish snapshot", "sim_id", e.SimulationID, "day", e.Day, "err", err)
	}
}

// Params returns the epidemiological parameters in use.
func (s *Service) Params() domain.Params {
	return s.params
}

// Limits returns the request limits in use.
func (s *Service) Limits() Limits {
	return s.limits
}

// Generate scatters n agents over the bounds, builds their contact graph and
// creates a simulation on it with a random 1-10% of agents already infectious.
func (s *Service) Generate(ctx context.Context, n int) (Status, error) {
	if n < s.limits.MinPopulation || n > s.limits.MaxPopulation {
		return Status{}, &domain.PopulationError{N: n, Min: s.limits.MinPopulation, Max: s.limits.MaxPopulation}
	}

	graph, err := contact.Generate(s.ids.GraphID(), n, contact.Options{
		Bounds:       s.bounds,
		RadiusM:      s.params.InfectionRadiusM,
		TargetDegree: s.params.TargetDegree,
	}, s.rng)
	if err != nil {
		return Status{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	sim, seeded := runtime.NewSimulation(s.ids.SimulationID(), graph.ID, n, s.rng)

	if err := s.graphs.SaveGraph(ctx, graph); err != nil {
		return Status{}, fmt.Errorf("failed to save graph: %w", err)
	}
	if err := s.sims.Save(ctx, sim); err != nil {
		if derr := s.graphs.DeleteGraph(ctx, graph.ID); derr != nil {
			s.logger.Warn("Failed to remove orphaned graph", "graph_id", graph.ID, "err", derr)
		}
		return Status{}, fmt.Errorf("failed to save simulation: %w", err)
	}

	s.logger.Info("Graph generated",
		"graph_id", graph.ID,
		"sim_id", sim.ID,
		"n", graph.Len(),
		"m", len(graph.Edges),
		"seeded", seeded,
	)
	if s.hooks.OnGraphGenerated != nil {
		s.hooks.OnGraphGenerated(ctx, &domain.GraphEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGraphGenerated, SimulationID: sim.ID},
			GraphID:   graph.ID,
			Nodes:     graph.Len(),
			Edges:     len(graph.Edges),
			Seeded:    seeded,
		})
	}

	status := StatusOf(sim)
	status.GraphID = graph.ID
	return status, nil
}

// ClampDays bounds a requested day count to [1, MaxDaysPerStep].
func (s *Service) ClampDays(days int) int {
	return max(1, min(days, s.limits.MaxDaysPerStep))
}

// Step advances the simulation by days (clamped with ClampDays), stopping early
// once the epidemic has ended. The step is all or nothing: on error the stored
// simulation is left as it was and no hooks fire. Hooks and the publisher run
// after the simulation is saved and its lock released.
func (s *Service) Step(ctx context.Context, simID string, days int) (Status, error) {
	days = s.ClampDays(days)

	stepCtx, pending := withPending(ctx)
	sim, err := s.sims.Update(stepCtx, simID, func(ctx context.Context, sim *domain.Simulation) error {
		graph, err := s.graphs.LoadGraph(ctx, sim.GraphID)
		if errors.Is(err, domain.ErrGraphNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrGraphMissing, sim.GraphID)
		}
		if err != nil {
			return err
		}

		for range days {
			advanced, err := s.engine.Step(ctx, sim, graph.Adjacency)
			if err != nil {
				return err
			}
			if !advanced || sim.Terminated() {
				break
			}
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	pending.flush(ctx)
	return StatusOf(sim), nil
}

// Graph returns the stored graph.
func (s *Service) Graph(ctx context.Context, graphID string) (*domain.Graph, error) {
	return s.graphs.LoadGraph(ctx, graphID)
}

// Simulation returns a copy of the stored simulation.
func (s *Service) Simulation(ctx context.Context, simID string) (*domain.Simulation, error) {
	return s.sims.Load(ctx, simID)
}

// Simulations lists the stored simulation IDs.
func (s *Service) Simulations(ctx context.Context) ([]string, error) {
	return s.sims.List(ctx)
}

// State returns the per-agent state codes (0=S 1=E 2=I 3=Q 4=R).
func (s *Service) State(ctx context.Context, simID string) ([]int, error) {
	sim, err := s.sims.Load(ctx, simID)
	if err != nil {
		return nil, err
	}
	return sim.StateCodes(), nil
}

// Timeseries returns the last n daily snapshots; n <= 0 uses the configured window.
func (s *Service) Timeseries(ctx context.Context, simID string, n int) ([]domain.Snapshot, error) {
	sim, err := s.sims.Load(ctx, simID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.limits.TimeseriesWindow
	}
	return sim.Window(n), nil
}

// Close releases the publisher, if any.
func (s *Service) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
