package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/epinet/internal/presentation/graph"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func triangle() *domain.Graph {
	return &domain.Graph{
		ID:    "g",
		Nodes: []domain.Node{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}},
		Edges: []domain.Edge{{A: 0, B: 1}, {A: 1, B: 2}, {A: 0, B: 2}, {A: 2, B: 3}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		overlay     *graph.StateOverlay
		contains    []string
		notContains []string
	}{
		{
			name:  "Nodes And Edges",
			limit: 0,
			contains: []string{
				"graph LR\n",
				`n0(("0"))`,
				`n3(("3"))`,
				"n0 --- n1",
				"n2 --- n3",
			},
			notContains: []string{"classDef", "showing"},
		},
		{
			name:  "Limit Drops Outside Edges",
			limit: 3,
			contains: []string{
				"%% showing 3 of 4 nodes",
				"n0 --- n2",
			},
			notContains: []string{`n3(("3"))`, "n2 --- n3"},
		},
		{
			name:  "State Overlay",
			limit: 0,
			overlay: &graph.StateOverlay{States: []domain.State{
				domain.StateS, domain.StateI, domain.StateS, domain.StateR,
			}},
			contains: []string{
				"classDef S ",
				"class n0,n2 S;",
				"class n1 I;",
				"class n3 R;",
			},
			notContains: []string{"classDef E", "classDef Q"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(triangle(), tt.overlay, tt.limit)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestOverlayOf(t *testing.T) {
	sim := &domain.Simulation{Agents: []domain.Agent{{State: domain.StateE}, {State: domain.StateQ}}}
	overlay := graph.OverlayOf(sim)
	assert.Equal(t, []domain.State{domain.StateE, domain.StateQ}, overlay.States)

	out := graph.GenerateMermaid(&domain.Graph{Nodes: make([]domain.Node, 2)}, overlay, 0)
	assert.Equal(t, 1, strings.Count(out, "class n0 E;"))
	assert.Equal(t, 1, strings.Count(out, "class n1 Q;"))
}
