package domain

import "github.com/aretw0/epinet/pkg/geo"

// Node is a point of the contact graph. Its ID equals its index in Graph.Nodes.
type Node struct {
	ID  int     `json:"id"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Edge is an undirected contact between two distinct nodes, stored with A < B.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewEdge returns the canonical form of the edge between a and b.
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Graph is the contact network a simulation runs on.
// It is never mutated after generation and may be shared between readers.
type Graph struct {
	ID    string `json:"id"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	// Adjacency lists neighbours per node in edge-insertion order.
	Adjacency [][]int `json:"-"`

	Bounds       geo.Bounds `json:"bounds"`
	RadiusM      float64    `json:"infection_radius_m"`
	TargetDegree int        `json:"target_degree"`
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Degree returns the number of neighbours of node i.
func (g *Graph) Degree(i int) int {
	return len(g.Adjacency[i])
}

// GraphMeta summarises a graph for export.
type GraphMeta struct {
	Bounds  geo.Bounds `json:"bounds"`
	RadiusM float64    `json:"infection_radius_m"`
	N       int        `json:"n"`
	M       int        `json:"m"`
}

// Meta returns the export metadata of the graph.
func (g *Graph) Meta() GraphMeta {
	return GraphMeta{
		Bounds:  g.Bounds,
		RadiusM: g.RadiusM,
		N:       len(g.Nodes),
		M:       len(g.Edges),
	}
}
