package contact

import (
	"fmt"
	"math/rand/v2"

	"github.com/aretw0/epinet/pkg/domain"
	"github.com/aretw0/epinet/pkg/geo"
)

// Options configures graph generation.
type Options struct {
	Bounds       geo.Bounds
	RadiusM      float64
	TargetDegree int
}

// GeneratePoints draws n points uniformly over bounds with ids 0..n-1.
func GeneratePoints(n int, bounds geo.Bounds, rng *rand.Rand) []domain.Node {
	nodes := make([]domain.Node, n)
	for i := range nodes {
		lat, lng := bounds.RandomPoint(rng)
		nodes[i] = domain.Node{ID: i, Lat: lat, Lng: lng}
	}
	return nodes
}

// GenerateEdges connects spatially close nodes up to targetDegree neighbours each,
// then runs the random repair pass. Edges are returned in creation order.
func GenerateEdges(nodes []domain.Node, bounds geo.Bounds, radiusM float64, targetDegree int, rng *rand.Rand) []domain.Edge {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	grid := geo.NewGrid(bounds, nodes[0].Lat, radiusM)
	for i, nd := range nodes {
		grid.Insert(i, nd.Lat, nd.Lng)
	}

	deg := make([]int, n)
	seen := make(map[domain.Edge]struct{})
	var edges []domain.Edge

	add := func(e domain.Edge) {
		seen[e] = struct{}{}
		edges = append(edges, e)
		deg[e.A]++
		deg[e.B]++
	}

	// Spatial pass.
	for i, a := range nodes {
		cand := grid.Candidates(a.Lat, a.Lng)
		rng.Shuffle(len(cand), func(x, y int) { cand[x], cand[y] = cand[y], cand[x] })

		for _, j := range cand {
			if j == i {
				continue
			}
			if deg[i] >= targetDegree {
				break
			}
			if deg[j] >= targetDegree {
				continue
			}
			e := domain.NewEdge(i, j)
			if _, ok := seen[e]; ok {
				continue
			}
			if geo.Haversine(a.Lat, a.Lng, nodes[j].Lat, nodes[j].Lng) <= radiusM {
				add(e)
			}
		}
	}

	// Repair pass.
	for attempts := 0; attempts < 2*n; attempts++ {
		a := rng.IntN(n)
		b := rng.IntN(n)
		if a == b {
			continue
		}
		e := domain.NewEdge(a, b)
		if _, ok := seen[e]; ok {
			continue
		}
		if deg[e.A] >= targetDegree || deg[e.B] >= targetDegree {
			continue
		}
		add(e)
	}

	return edges
}

// BuildAdjacency returns one neighbour list per node, in edge-insertion order.
func BuildAdjacency(n int, edges []domain.Edge) [][]int {
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	return adj
}

// Generate builds a complete graph with n nodes: points, edges and adjacency.
func Generate(id string, n int, opts Options, rng *rand.Rand) (*domain.Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative node count %d", n)
	}
	if err := opts.Bounds.Validate(); err != nil {
		return nil, err
	}
	if opts.RadiusM <= 0 {
		return nil, fmt.Errorf("radius must be positive, got %v", opts.RadiusM)
	}

	nodes := GeneratePoints(n, opts.Bounds, rng)
	edges := GenerateEdges(nodes, opts.Bounds, opts.RadiusM, opts.TargetDegree, rng)

	return &domain.Graph{
		ID:           id,
		Nodes:        nodes,
		Edges:        edges,
		Adjacency:    BuildAdjacency(n, edges),
		Bounds:       opts.Bounds,
		RadiusM:      opts.RadiusM,
		TargetDegree: opts.TargetDegree,
	}, nil
}
