package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/epinet/pkg/domain"
)

// Store implements ports.GraphStore and ports.SimulationStore in memory.
// Safe for concurrent use.
type Store struct {
	graphs map[string]*domain.Graph
	sims   map[string]*domain.Simulation
	mu     sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		graphs: make(map[string]*domain.Graph),
		sims:   make(map[string]*domain.Simulation),
	}
}

// SaveGraph keeps the graph by reference; graphs are never mutated after generation.
func (s *Store) SaveGraph(ctx context.Context, graph *domain.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[graph.ID] = graph
	return nil
}

// LoadGraph retrieves a graph from memory.
func (s *Store) LoadGraph(ctx context.Context, id string) (*domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.graphs[id]
	if !ok {
		return nil, domain.ErrGraphNotFound
	}
	return g, nil
}

// DeleteGraph removes the graph.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.graphs, id)
	return nil
}

// ListGraphs returns the stored graph IDs in lexical order.
func (s *Store) ListGraphs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.graphs), nil
}

// SaveSimulation stores a deep copy of the simulation.
func (s *Store) SaveSimulation(ctx context.Context, sim *domain.Simulation) error {
	copied := sim.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sims[sim.ID] = copied
	return nil
}

// LoadSimulation returns a copy so the caller can't mutate the stored state by pointer.
func (s *Store) LoadSimulation(ctx context.Context, id string) (*domain.Simulation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sim, ok := s.sims[id]
	if !ok {
		return nil, domain.ErrSimulationNotFound
	}
	return sim.Clone(), nil
}

// DeleteSimulation removes the simulation.
func (s *Store) DeleteSimulation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sims, id)
	return nil
}

// ListSimulations returns the stored simulation IDs in lexical order.
func (s *Store) ListSimulations(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.sims), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
