package ports

import (
	"context"

	"github.com/aretw0/epinet/pkg/domain"
)

// GraphStore persists contact graphs.
// Graphs are immutable once saved, so implementations may share them between readers.
type GraphStore interface {
	// SaveGraph stores the graph under graph.ID, replacing any previous one.
	SaveGraph(ctx context.Context, graph *domain.Graph) error

	// LoadGraph returns domain.ErrGraphNotFound if the graph does not exist.
	LoadGraph(ctx context.Context, id string) (*domain.Graph, error)

	DeleteGraph(ctx context.Context, id string) error
	ListGraphs(ctx context.Context) ([]string, error)
}

// SimulationStore persists simulation state.
// Implementations must isolate stored state from the caller's copy.
type SimulationStore interface {
	// SaveSimulation stores the simulation under sim.ID, replacing any previous one.
	SaveSimulation(ctx context.Context, sim *domain.Simulation) error

	// LoadSimulation returns domain.ErrSimulationNotFound if the simulation does not exist.
	LoadSimulation(ctx context.Context, id string) (*domain.Simulation, error)

	DeleteSimulation(ctx context.Context, id string) error
	ListSimulations(ctx context.Context) ([]string, error)
}

// IDGenerator mints identifiers for new graphs and simulations.
type IDGenerator interface {
	GraphID() string
	SimulationID() string
}

// SnapshotPublisher receives every simulated day. Publishing is best effort:
// a failure is logged and never rolls back the step.
type SnapshotPublisher interface {
	Publish(ctx context.Context, event *domain.StepEvent) error
	Close() error
}
