package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/muesli/termenv"
)

// stateColors follows the compartment palette used by the Mermaid overlay.
var stateColors = map[domain.State]string{
	domain.StateS: "#4ade80",
	domain.StateE: "#facc15",
	domain.StateI: "#f87171",
	domain.StateQ: "#a78bfa",
	domain.StateR: "#94a3b8",
}

// PrintBanner writes the epinet ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"            _            _   ", "#4ade80"},
		{"   ___ _ __(_)_ __   ___| |_ ", "#a3e635"},
		{"  / _ \\ '_ \\ | '_ \\ / _ \\ __|", "#facc15"},
		{" |  __/ |_) | | | | |  __/ |_ ", "#fb923c"},
		{"  \\___| .__/|_|_| |_|\\___|\\__|", "#f87171"},
		{"      |_|                     ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// FormatCounts renders "S=.. E=.. I=.. Q=.. R=.." with each compartment in its colour.
func FormatCounts(c domain.Counts) string {
	return formatCounts(termenv.ColorProfile(), c)
}

func formatCounts(p termenv.Profile, c domain.Counts) string {
	out := ""
	for i, s := range domain.States {
		if i > 0 {
			out += " "
		}
		out += p.String(fmt.Sprintf("%s=%d", s, c.Get(s))).Foreground(p.Color(stateColors[s])).String()
	}
	return out
}
