package graph

// Statistics summarises the shape of a graph.
type Statistics struct {
	VertexCount   int
	EdgeCount     int
	MinOutDegree  int
	MaxOutDegree  int
	AverageDegree float64
	Density       float64 // E / (V * (V-1)), 0 for graphs with fewer than two vertices
	Isolated      int     // vertices with neither outgoing nor incoming edges
	TotalWeight   int64
}

// Stats computes Statistics in a single pass over the adjacency lists.
func (g *Graph) Stats() Statistics {
	n := g.VertexCount()
	stats := Statistics{
		VertexCount: n,
		EdgeCount:   g.edgeCount,
	}
	if n == 0 {
		return stats
	}

	hasIncoming := make([]bool, n)
	stats.MinOutDegree = int(^uint(0) >> 1) // MaxInt

	for _, edges := range g.adjacency {
		d := len(edges)
		if d < stats.MinOutDegree {
			stats.MinOutDegree = d
		}
		if d > stats.MaxOutDegree {
			stats.MaxOutDegree = d
		}
		for _, e := range edges {
			hasIncoming[e.To] = true
			stats.TotalWeight += e.Weight
		}
	}

	for u, edges := range g.adjacency {
		if len(edges) == 0 && !hasIncoming[u] {
			stats.Isolated++
		}
	}

	stats.AverageDegree = float64(g.edgeCount) / float64(n)
	if n > 1 {
		stats.Density = float64(g.edgeCount) / (float64(n) * float64(n-1))
	}

	return stats
}
