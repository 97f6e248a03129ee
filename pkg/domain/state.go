package domain

import "fmt"

// State is the disease compartment of an agent.
// The numeric values are part of the export format.
type State uint8

const (
	StateS State = iota // Susceptible
	StateE              // Exposed, incubating
	StateI              // Infectious, not yet tested
	StateQ              // Quarantined after a positive test
	StateR              // Recovered, terminal
)

// States lists every compartment in export order.
var States = [...]State{StateS, StateE, StateI, StateQ, StateR}

// String returns the single-letter label used in counts ("S", "E", ...).
func (s State) String() string {
	switch s {
	case StateS:
		return "S"
	case StateE:
		return "E"
	case StateI:
		return "I"
	case StateQ:
		return "Q"
	case StateR:
		return "R"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// NoDay marks an unset day stamp.
const NoDay = -1

// Agent is one individual of a simulation, bound to the graph node of the same index.
type Agent struct {
	State State `json:"state"`

	// Day stamps of the transitions into E, I and Q. NoDay when the transition never happened.
	TExposed     int `json:"t_exposed"`
	TInfected    int `json:"t_infected"`
	TQuarantined int `json:"t_quarantined"`
}

// NewAgent returns a susceptible agent with no day stamps.
func NewAgent() Agent {
	return Agent{
		State:        StateS,
		TExposed:     NoDay,
		TInfected:    NoDay,
		TQuarantined: NoDay,
	}
}

// EverInfected reports whether the agent has ever become infectious.
// TInfected is never cleared, so this stays true after recovery.
func (a Agent) EverInfected() bool {
	return a.TInfected != NoDay
}

// Counts is the number of agents per compartment.
type Counts struct {
	S int `json:"S"`
	E int `json:"E"`
	I int `json:"I"`
	Q int `json:"Q"`
	R int `json:"R"`
}

// Add increments the counter of the given state.
func (c *Counts) Add(s State) {
	switch s {
	case StateS:
		c.S++
	case StateE:
		c.E++
	case StateI:
		c.I++
	case StateQ:
		c.Q++
	case StateR:
		c.R++
	}
}

// Get returns the counter of the given state.
func (c Counts) Get(s State) int {
	switch s {
	case StateS:
		return c.S
	case StateE:
		return c.E
	case StateI:
		return c.I
	case StateQ:
		return c.Q
	case StateR:
		return c.R
	}
	return 0
}

// Active is the number of agents still carrying the disease (E + I + Q).
func (c Counts) Active() int {
	return c.E + c.I + c.Q
}

// Total is the population size.
func (c Counts) Total() int {
	return c.S + c.E + c.I + c.Q + c.R
}

// Snapshot is the time-series entry recorded at the end of a day.
// Counts are flattened into the JSON object next to the day.
type Snapshot struct {
	Day int `json:"day"`
	Counts
}
