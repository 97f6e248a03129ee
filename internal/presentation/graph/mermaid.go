package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/epinet/pkg/domain"
)

// DefaultLimit caps how many nodes are drawn; Mermaid becomes unusable well before 1000.
const DefaultLimit = 500

// StateOverlay colours nodes by compartment. States[i] belongs to node i.
type StateOverlay struct {
	States []domain.State
}

// classDefs use black text (color:#000) for contrast regardless of theme.
var classDefs = map[domain.State]string{
	domain.StateS: "fill:#e8f5e9,stroke:#2e7d32,color:#000",
	domain.StateE: "fill:#fff8e1,stroke:#f9a825,color:#000",
	domain.StateI: "fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000",
	domain.StateQ: "fill:#ede7f6,stroke:#4527a0,color:#000",
	domain.StateR: "fill:#eceff1,stroke:#455a64,color:#000",
}

// GenerateMermaid produces a Mermaid flowchart of the contact graph restricted to
// its first limit nodes (DefaultLimit when limit <= 0). Edges leaving that subset
// are dropped. Nodes are drawn as circles labelled with their ID.
func GenerateMermaid(g *domain.Graph, overlay *StateOverlay, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	n := min(limit, g.Len())

	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if n < g.Len() {
		fmt.Fprintf(&sb, "    %%%% showing %d of %d nodes\n", n, g.Len())
	}

	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "    %s((\"%d\"))\n", nodeID(i), i)
	}
	for _, e := range g.Edges {
		if e.A < n && e.B < n {
			fmt.Fprintf(&sb, "    %s --- %s\n", nodeID(e.A), nodeID(e.B))
		}
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% State Overlay\n")
	byState := make(map[domain.State][]string)
	for i := 0; i < n && i < len(overlay.States); i++ {
		s := overlay.States[i]
		byState[s] = append(byState[s], nodeID(i))
	}
	for _, s := range domain.States {
		members := byState[s]
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "    classDef %s %s;\n", s, classDefs[s])
		fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(members, ","), s)
	}

	return sb.String()
}

// OverlayOf builds an overlay from a simulation.
func OverlayOf(sim *domain.Simulation) *StateOverlay {
	states := make([]domain.State, len(sim.Agents))
	for i, a := range sim.Agents {
		states[i] = a.State
	}
	return &StateOverlay{States: states}
}

func nodeID(i int) string {
	return fmt.Sprintf("n%d", i)
}
