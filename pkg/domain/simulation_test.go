package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(states ...domain.State) *domain.Simulation {
	sim := &domain.Simulation{ID: "s_test", GraphID: "g_test"}
	for _, st := range states {
		a := domain.NewAgent()
		a.State = st
		if st != domain.StateS && st != domain.StateE {
			a.TInfected = 0
		}
		sim.Agents = append(sim.Agents, a)
	}
	return sim
}

func TestState_String(t *testing.T) {
	labels := ""
	for _, s := range domain.States {
		labels += s.String()
	}
	assert.Equal(t, "SEIQR", labels)
	assert.Equal(t, "State(9)", domain.State(9).String())
}

func TestSimulation_Counts(t *testing.T) {
	sim := newSim(domain.StateS, domain.StateS, domain.StateE, domain.StateI, domain.StateQ, domain.StateR)
	c := sim.Counts()

	assert.Equal(t, domain.Counts{S: 2, E: 1, I: 1, Q: 1, R: 1}, c)
	assert.Equal(t, 6, c.Total())
	assert.Equal(t, 3, c.Active())
	want := []int{2, 1, 1, 1, 1}
	for i, s := range domain.States {
		assert.Equal(t, want[i], c.Get(s), s.String())
	}
}

func TestSimulation_Terminated(t *testing.T) {
	tests := []struct {
		name   string
		sim    *domain.Simulation
		expect bool
	}{
		{"All Susceptible", newSim(domain.StateS, domain.StateS), true},
		{"All Recovered", newSim(domain.StateR, domain.StateS), true},
		{"Exposed Pending", newSim(domain.StateE, domain.StateR), false},
		{"Infectious", newSim(domain.StateI), false},
		{"Quarantined", newSim(domain.StateQ, domain.StateR), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.sim.Terminated())
		})
	}
}

func TestSimulation_TotalEverInfected(t *testing.T) {
	sim := newSim(domain.StateS, domain.StateE, domain.StateI, domain.StateQ, domain.StateR)
	assert.Equal(t, 3, sim.TotalEverInfected())
}

func TestSimulation_Window(t *testing.T) {
	sim := newSim(domain.StateS)
	for d := 0; d < 10; d++ {
		sim.Series = append(sim.Series, domain.Snapshot{Day: d, Counts: domain.Counts{S: 1}})
	}

	assert.Len(t, sim.Window(0), 10)
	assert.Len(t, sim.Window(50), 10)

	last := sim.Window(3)
	require.Len(t, last, 3)
	assert.Equal(t, 7, last[0].Day)
	assert.Equal(t, 9, last[2].Day)

	last[0].Day = 100
	assert.Equal(t, 7, sim.Series[7].Day, "window must not alias the series")
}

func TestSimulation_Clone(t *testing.T) {
	sim := newSim(domain.StateS, domain.StateI)
	sim.Series = []domain.Snapshot{{Day: 0}}

	c := sim.Clone()
	c.Agents[0].State = domain.StateR
	c.Series[0].Day = 5
	c.Lockdown = true

	assert.Equal(t, domain.StateS, sim.Agents[0].State)
	assert.Equal(t, 0, sim.Series[0].Day)
	assert.False(t, sim.Lockdown)
}

func TestSnapshot_JSONIsFlat(t *testing.T) {
	snap := domain.Snapshot{Day: 3, Counts: domain.Counts{S: 1, E: 2, I: 3, Q: 4, R: 5}}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":3,"S":1,"E":2,"I":3,"Q":4,"R":5}`, string(data))
}

func TestStateCodes(t *testing.T) {
	sim := newSim(domain.StateS, domain.StateE, domain.StateI, domain.StateQ, domain.StateR)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, sim.StateCodes())
}

func TestNewEdge_Canonical(t *testing.T) {
	assert.Equal(t, domain.Edge{A: 1, B: 5}, domain.NewEdge(5, 1))
	assert.Equal(t, domain.Edge{A: 1, B: 5}, domain.NewEdge(1, 5))
}
