// Package algorithms provides single-source shortest-path algorithms over
// pkg/graph graphs: Dijkstra driven by an indexed binary min-heap, and a
// Bellman-Ford reference used to cross-check results.
package algorithms

import (
	"context"
	"math"

	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
)

// Infinity is the distance reported for vertices that cannot be reached from
// the source.
const Infinity int64 = math.MaxInt64

// contextCheckInterval is the number of heap extractions between context
// polls in DijkstraWithContext.
const contextCheckInterval = 1024

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// Dijkstra's algorithm finds the shortest distances from a single source
// vertex to all other vertices in a graph with non-negative edge weights.
//
// Time Complexity: O((V + E) log V) with the indexed binary heap
// Space Complexity: O(V)
//
// Vertex states:
//
//	unvisited -> relaxed (tentative distance) -> finalized
//
// Algorithm:
//  1. dist[v] = Infinity for all v, dist[source] = 0; seed the heap with dist
//     and pull the source to the root with one DecreaseKey.
//  2. While the heap is non-empty:
//     a. u = ExtractMin()
//     b. if dist[u] == Infinity, stop: everything left is unreachable
//     c. finalize u
//     d. for each edge (u, v, w) with v not finalized:
//     if dist[u] + w < dist[v], set dist[v] and DecreaseKey(v, dist[v])
//  3. Return dist.
//
// Every call owns its heap, visited set and distance vector; nothing is
// shared between calls. The graph is only read.
//
// Ordering among vertices with equal tentative distances is not
// deterministic. Distances are unaffected by it.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// DijkstraResult contains the result of Dijkstra's algorithm.
type DijkstraResult struct {
	// Distances holds the shortest distance from Source to every vertex.
	// Unreachable vertices hold Infinity.
	Distances []int64

	// Source is the vertex the search started from.
	Source int

	// Settled is the number of finalized vertices, i.e. the number of
	// vertices reachable from Source.
	Settled int

	// EdgesScanned counts outgoing edges inspected from finalized vertices,
	// including edges back into already finalized ones. It equals the sum
	// of the out-degrees of the settled vertices.
	EdgesScanned int

	// Relaxations counts tentative-distance improvements. Each one issues
	// exactly one DecreaseKey.
	Relaxations int
}

// IsReachable reports whether v has a finite distance.
func (r *DijkstraResult) IsReachable(v int) bool {
	return v >= 0 && v < len(r.Distances) && r.Distances[v] != Infinity
}

// ShortestPath returns the shortest distance from source to every vertex of
// g. Unreachable vertices hold Infinity. Each call is an independent cold
// computation; nothing is cached between calls.
//
// Errors:
//   - NIL_INPUT if g is nil
//   - INVALID_SOURCE if source is not a vertex of g
func ShortestPath(g *graph.Graph, source int) ([]int64, error) {
	result, err := Dijkstra(g, source)
	if err != nil {
		return nil, err
	}
	return result.Distances, nil
}

// Dijkstra executes Dijkstra's algorithm without context cancellation support.
//
// Parameters:
//   - g: The graph to search
//   - source: The source vertex
//
// Returns:
//   - *DijkstraResult containing distances and run counters
func Dijkstra(g *graph.Graph, source int) (*DijkstraResult, error) {
	return DijkstraWithContext(context.Background(), g, source)
}

// DijkstraWithContext executes Dijkstra's algorithm with context cancellation.
//
// Parameters:
//   - ctx: Context polled every contextCheckInterval extractions
//   - g: The graph to search
//   - source: The source vertex
//
// Returns:
//   - *DijkstraResult with distances and counters, or
//   - an error; a cancelled run returns CANCELLED or TIMEOUT and no partial
//     distances
func DijkstraWithContext(ctx context.Context, g *graph.Graph, source int) (*DijkstraResult, error) {
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

	s := globalPool.acquire(dist)
	defer globalPool.release(s)

	h := &s.heap
	visited := s.visited

	// Keys were seeded from dist, so this only moves the source to the root.
	if err := h.DecreaseKey(source, 0); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeAlgorithmError, "seed source")
	}

	result := &DijkstraResult{
		Distances: dist,
		Source:    source,
	}

	iterations := 0
	for h.Len() > 0 {
		if iterations%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperror.FromContext(err).
					WithDetails("settled", result.Settled)
			}
		}
		iterations++

		u, err := h.ExtractMin()
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeAlgorithmError, "extract minimum")
		}

		du := dist[u]
		if du == Infinity {
			break
		}
		visited[u] = true
		result.Settled++

		for _, e := range g.Neighbors(u) {
			result.EdgesScanned++
			v := e.To
			if visited[v] {
				continue
			}

			candidate := addSaturating(du, e.Weight)
			if candidate < dist[v] {
				dist[v] = candidate
				if err := h.DecreaseKey(v, candidate); err != nil {
					return nil, apperror.Wrap(err, apperror.CodeAlgorithmError, "decrease key").
						WithDetails("vertex", v)
				}
				result.Relaxations++
			}
		}
	}

	return result, nil
}

// addSaturating returns a + w, clamped to Infinity. Both operands are
// non-negative.
func addSaturating(a, w int64) int64 {
	if w > Infinity-a {
		return Infinity
	}
	return a + w
}

// CountReachable returns the number of finite entries in a distance vector.
func CountReachable(dist []int64) int {
	n := 0
	for _, d := range dist {
		if d != Infinity {
			n++
		}
	}
	return n
}
