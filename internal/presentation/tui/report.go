package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/epinet/pkg/domain"
)

// maxRows bounds the daily table; longer runs are sampled evenly.
const maxRows = 20

// Report summarises a finished (or abandoned) run.
type Report struct {
	SimID         string            `json:"sim_id"`
	Population    int               `json:"n"`
	Edges         int               `json:"m"`
	Days          int               `json:"days"`
	Seeded        int               `json:"seeded"`
	PeakInfected  int               `json:"peak_infected"`
	PeakDay       int               `json:"peak_day"`
	LockdownDay   int               `json:"lockdown_day"` // domain.NoDay if never imposed
	TotalInfected int               `json:"total_infected"`
	Terminated    bool              `json:"terminated"`
	Message       string            `json:"policy_message"`
	Series        []domain.Snapshot `json:"series"`
}

// Summarize builds a Report from a simulation. lockdownDay is tracked by the
// caller since the series does not record the policy flag.
func Summarize(sim *domain.Simulation, edges, lockdownDay int) Report {
	r := Report{
		SimID:         sim.ID,
		Population:    len(sim.Agents),
		Edges:         edges,
		Days:          sim.Day,
		LockdownDay:   lockdownDay,
		TotalInfected: sim.TotalEverInfected(),
		Terminated:    sim.Terminated(),
		Message:       sim.Message,
		Series:        sim.Series,
	}
	if len(sim.Series) > 0 {
		r.Seeded = sim.Series[0].I
	}
	for _, snap := range sim.Series {
		if snap.I > r.PeakInfected {
			r.PeakInfected = snap.I
			r.PeakDay = snap.Day
		}
	}
	return r
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Simulation %s\n\n", r.SimID)
	if r.Message != "" {
		fmt.Fprintf(&sb, "> %s\n\n", r.Message)
	}

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Population | %d |\n", r.Population)
	fmt.Fprintf(&sb, "| Contacts (edges) | %d |\n", r.Edges)
	fmt.Fprintf(&sb, "| Initially infectious | %d |\n", r.Seeded)
	fmt.Fprintf(&sb, "| Days simulated | %d |\n", r.Days)
	fmt.Fprintf(&sb, "| Peak infectious | %d (day %d) |\n", r.PeakInfected, r.PeakDay)
	if r.LockdownDay == domain.NoDay {
		sb.WriteString("| Lockdown | never |\n")
	} else {
		fmt.Fprintf(&sb, "| Lockdown | day %d |\n", r.LockdownDay)
	}
	fmt.Fprintf(&sb, "| Ever infected | %d (%.1f%%) |\n", r.TotalInfected, percent(r.TotalInfected, r.Population))
	fmt.Fprintf(&sb, "| Ended | %t |\n", r.Terminated)

	if len(r.Series) > 0 {
		sb.WriteString("\n## Daily counts\n\n| Day | S | E | I | Q | R |\n|---|---|---|---|---|---|\n")
		for _, snap := range sample(r.Series, maxRows) {
			fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d | %d |\n", snap.Day, snap.S, snap.E, snap.I, snap.Q, snap.R)
		}
	}
	return sb.String()
}

// sample picks at most k entries evenly, always keeping the first and the last.
func sample(series []domain.Snapshot, k int) []domain.Snapshot {
	if len(series) <= k {
		return series
	}
	out := make([]domain.Snapshot, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, series[i*(len(series)-1)/(k-1)])
	}
	return out
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
