package domain

// Simulation is a population of agents spreading a disease over a Graph.
type Simulation struct {
	ID string `json:"id"`

	// GraphID is a weak reference: the graph is looked up on every step.
	GraphID string `json:"graph_id"`

	// Day starts at 0 and only advances when a step actually runs.
	Day int `json:"day"`

	// Agents[i] interacts only through the neighbours of graph node i.
	Agents []Agent `json:"agents"`

	// Series is append-only, one Snapshot per simulated day plus day 0.
	Series []Snapshot `json:"series"`

	// Lockdown flips to true at most once and never back.
	Lockdown bool   `json:"policy_quarantine_on"`
	Message  string `json:"policy_message"`
}

// Counts tallies the agents by state.
func (s *Simulation) Counts() Counts {
	var c Counts
	for _, a := range s.Agents {
		c.Add(a.State)
	}
	return c
}

// TotalEverInfected is the number of agents that have ever become infectious.
func (s *Simulation) TotalEverInfected() int {
	total := 0
	for _, a := range s.Agents {
		if a.EverInfected() {
			total++
		}
	}
	return total
}

// Terminated reports whether no agent carries the disease anymore and every
// agent that was ever infected has recovered.
func (s *Simulation) Terminated() bool {
	c := s.Counts()
	return c.Active() == 0 && c.R == s.TotalEverInfected()
}

// StateCodes returns the raw per-agent state codes.
func (s *Simulation) StateCodes() []int {
	codes := make([]int, len(s.Agents))
	for i, a := range s.Agents {
		codes[i] = int(a.State)
	}
	return codes
}

// Window returns the last n entries of the series (all of them when n <= 0).
// The returned slice is a copy.
func (s *Simulation) Window(n int) []Snapshot {
	series := s.Series
	if n > 0 && len(series) > n {
		series = series[len(series)-n:]
	}
	out := make([]Snapshot, len(series))
	copy(out, series)
	return out
}

// Clone returns a deep copy so that stores can isolate callers from their state.
func (s *Simulation) Clone() *Simulation {
	c := *s
	c.Agents = make([]Agent, len(s.Agents))
	copy(c.Agents, s.Agents)
	c.Series = make([]Snapshot, len(s.Series))
	copy(c.Series, s.Series)
	return &c
}
