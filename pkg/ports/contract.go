package ports

import (
	"context"
	"testing"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGraphStoreContract verifies that a GraphStore implementation
// adheres to the interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()

	newGraph := func(id string) *domain.Graph {
		return &domain.Graph{
			ID: id,
			Nodes: []domain.Node{
				{ID: 0, Lat: 33.6, Lng: 73.0},
				{ID: 1, Lat: 33.6001, Lng: 73.0001},
			},
			Edges:     []domain.Edge{{A: 0, B: 1}},
			Adjacency: [][]int{{1}, {0}},
			Bounds:    geo.Islamabad,
			RadiusM:   25,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		g := newGraph("contract-graph")
		require.NoError(t, store.SaveGraph(ctx, g))

		loaded, err := store.LoadGraph(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.Nodes, loaded.Nodes)
		assert.Equal(t, g.Edges, loaded.Edges)
		assert.Equal(t, g.Adjacency, loaded.Adjacency)
		assert.Equal(t, g.Meta(), loaded.Meta())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadGraph(ctx, "missing-graph")
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		g := newGraph("contract-graph-delete")
		require.NoError(t, store.SaveGraph(ctx, g))
		require.NoError(t, store.DeleteGraph(ctx, g.ID))

		_, err := store.LoadGraph(ctx, g.ID)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.SaveGraph(ctx, newGraph("contract-graph-1")))
		require.NoError(t, store.SaveGraph(ctx, newGraph("contract-graph-2")))
		defer func() {
			_ = store.DeleteGraph(ctx, "contract-graph-1")
			_ = store.DeleteGraph(ctx, "contract-graph-2")
		}()

		ids, err := store.ListGraphs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "contract-graph-1")
		assert.Contains(t, ids, "contract-graph-2")
	})
}

// RunSimulationStoreContract verifies that a SimulationStore implementation
// adheres to the interface contract.
func RunSimulationStoreContract(t *testing.T, store SimulationStore) {
	ctx := context.Background()

	newSim := func(id string) *domain.Simulation {
		agents := []domain.Agent{domain.NewAgent(), domain.NewAgent()}
		agents[1].State = domain.StateI
		agents[1].TInfected = 0
		sim := &domain.Simulation{ID: id, GraphID: "g", Agents: agents}
		sim.Series = []domain.Snapshot{{Day: 0, Counts: sim.Counts()}}
		return sim
	}

	t.Run("Save and Load", func(t *testing.T) {
		sim := newSim("contract-sim")
		sim.Lockdown = true
		sim.Message = "locked"
		require.NoError(t, store.SaveSimulation(ctx, sim))

		loaded, err := store.LoadSimulation(ctx, sim.ID)
		require.NoError(t, err)
		assert.Equal(t, sim.GraphID, loaded.GraphID)
		assert.Equal(t, sim.Agents, loaded.Agents)
		assert.Equal(t, sim.Series, loaded.Series)
		assert.True(t, loaded.Lockdown)
		assert.Equal(t, "locked", loaded.Message)
	})

	t.Run("Isolation", func(t *testing.T) {
		sim := newSim("contract-sim-isolation")
		require.NoError(t, store.SaveSimulation(ctx, sim))

		sim.Agents[0].State = domain.StateR
		sim.Day = 99

		loaded, err := store.LoadSimulation(ctx, sim.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateS, loaded.Agents[0].State, "store must not alias the saved agents")
		assert.Equal(t, 0, loaded.Day)

		loaded.Agents[1].State = domain.StateR
		again, err := store.LoadSimulation(ctx, sim.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateI, again.Agents[1].State, "store must not alias the loaded agents")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadSimulation(ctx, "missing-sim")
		assert.ErrorIs(t, err, domain.ErrSimulationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		sim := newSim("contract-sim-delete")
		require.NoError(t, store.SaveSimulation(ctx, sim))
		require.NoError(t, store.DeleteSimulation(ctx, sim.ID))

		_, err := store.LoadSimulation(ctx, sim.ID)
		assert.ErrorIs(t, err, domain.ErrSimulationNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.SaveSimulation(ctx, newSim("contract-sim-1")))
		require.NoError(t, store.SaveSimulation(ctx, newSim("contract-sim-2")))
		defer func() {
			_ = store.DeleteSimulation(ctx, "contract-sim-1")
			_ = store.DeleteSimulation(ctx, "contract-sim-2")
		}()

		ids, err := store.ListSimulations(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "contract-sim-1")
		assert.Contains(t, ids, "contract-sim-2")
	})
}
