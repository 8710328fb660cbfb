package algorithms

import (
	"context"

	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
)

// =============================================================================
// Bellman-Ford Algorithm
// =============================================================================
//
// Bellman-Ford computes the same single-source distances as Dijkstra by
// relaxing every edge up to V-1 times. It needs no priority queue, which makes
// it a useful independent oracle for verifying Dijkstra output.
//
// Time Complexity: O(V * E)
// Space Complexity: O(V)
//
// Algorithm:
//  1. dist[source] = 0, dist[v] = Infinity for all v != source
//  2. Repeat V-1 times: relax all edges; stop early when a pass changes nothing
//
// Graphs accepted by pkg/graph have non-negative weights only, so no
// negative-cycle pass is needed.
//
// References:
//   - Bellman, R. (1958). "On a routing problem"
//   - Ford, L.R. (1956). "Network Flow Theory"
// =============================================================================

// BellmanFord computes shortest distances from source without cancellation.
func BellmanFord(g *graph.Graph, source int) ([]int64, error) {
	return BellmanFordWithContext(context.Background(), g, source)
}

// BellmanFordWithContext computes shortest distances from source, checking
// ctx before every pass over the edges.
//
// Returns the same errors as DijkstraWithContext.
func BellmanFordWithContext(ctx context.Context, g *graph.Graph, source int) ([]int64, error) {
	if g == nil {
		return nil, apperror.New(apperror.CodeNilInput, "graph is nil")
	}

	n := g.VertexCount()
	if source < 0 || source >= n {
		return nil, apperror.Newf(apperror.CodeInvalidSource,
			"source %d out of range [0, %d)", source, n).
			WithField("source")
	}

	dist := make([]int64, n)
	for i := range dist {
		dist[i] = Infinity
	}
	dist[source] = 0

	for pass := 0; pass < n-1; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, apperror.FromContext(err).WithDetails("pass", pass)
		}

		// Early termination if no updates occurred
		if !relaxAllEdges(g, dist) {
			break
		}
	}

	return dist, nil
}

// relaxAllEdges performs one relaxation pass in vertex order and reports
// whether any distance improved.
func relaxAllEdges(g *graph.Graph, dist []int64) bool {
	updated := false
	for u := 0; u < g.VertexCount(); u++ {
		du := dist[u]
		if du == Infinity {
			continue
		}
		for _, e := range g.Neighbors(u) {
			if candidate := addSaturating(du, e.Weight); candidate < dist[e.To] {
				dist[e.To] = candidate
				updated = true
			}
		}
	}
	return updated
}
