package runtime

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aretw0/epinet/pkg/domain"
)

// sample returns k distinct elements of pool chosen uniformly at random.
// pool itself is not reordered.
func sample(rng *rand.Rand, pool []int, k int) []int {
	buf := slices.Clone(pool)
	k = min(k, len(buf))
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(buf)-i)
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf[:k]
}

// InitialInfectedRange returns the inclusive bounds for the number of agents
// seeded as infectious: 1% to 10% of the population, at least one.
func InitialInfectedRange(n int) (lo, hi int) {
	lo = max(1, int(math.Ceil(0.01*float64(n))))
	hi = max(lo, int(math.Floor(0.10*float64(n))))
	return lo, hi
}

// SeedInfected sets k distinct random agents directly to I on the given day,
// bypassing E. k is clamped to [1, len(agents)]. It returns the chosen indices.
func SeedInfected(agents []domain.Agent, k, day int, rng *rand.Rand) []int {
	n := len(agents)
	if n == 0 {
		return nil
	}
	k = max(1, min(k, n))

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	picks := sample(rng, pool, k)
	for _, i := range picks {
		agents[i].State = domain.StateI
		agents[i].TInfected = day
		agents[i].TExposed = domain.NoDay
		agents[i].TQuarantined = domain.NoDay
	}
	return picks
}

// NewSimulation creates a simulation of n agents bound to graphID, seeds a
// random number of infectious agents within InitialInfectedRange and records
// the day 0 snapshot. It returns the simulation and the number seeded.
func NewSimulation(id, graphID string, n int, rng *rand.Rand) (*domain.Simulation, int) {
	lo, hi := InitialInfectedRange(n)
	k := lo + rng.IntN(hi-lo+1)
	return NewSeededSimulation(id, graphID, n, k, rng), min(k, n)
}

// NewSeededSimulation is NewSimulation with an explicit initial infected count.
func NewSeededSimulation(id, graphID string, n, k int, rng *rand.Rand) *domain.Simulation {
	agents := make([]domain.Agent, n)
	for i := range agents {
		agents[i] = domain.NewAgent()
	}
	SeedInfected(agents, k, 0, rng)

	sim := &domain.Simulation{
		ID:      id,
		GraphID: graphID,
		Agents:  agents,
	}
	sim.Series = []domain.Snapshot{{Day: 0, Counts: sim.Counts()}}
	return sim
}
