package domain

// Transitions counts the agents that moved between compartments during one day.
type Transitions struct {
	Exposed     int `json:"s_to_e"`
	Infectious  int `json:"e_to_i"`
	Quarantined int `json:"i_to_q"`
	Recovered   int `json:"i_to_r"`
	Released    int `json:"q_to_r"`
}

// CountsDelta is the signed change of every counter between two days.
type CountsDelta struct {
	S int `json:"S"`
	E int `json:"E"`
	I int `json:"I"`
	Q int `json:"Q"`
	R int `json:"R"`
}

// Diff returns next minus prev for every compartment.
func Diff(prev, next Counts) CountsDelta {
	return CountsDelta{
		S: next.S - prev.S,
		E: next.E - prev.E,
		I: next.I - prev.I,
		Q: next.Q - prev.Q,
		R: next.R - prev.R,
	}
}
