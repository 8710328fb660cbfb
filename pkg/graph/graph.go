// Package graph provides the weighted directed graph consumed by the
// shortest-path algorithms.
//
// Vertices are addressed by contiguous integer ids in [0, VertexCount()).
// Each vertex owns an ordered adjacency list of (destination, weight) pairs.
// The graph is append-only: edges are added one at a time and never removed
// or re-weighted.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent mutation. Once construction is finished it
// may be shared read-only between any number of shortest-path calls, provided
// nothing calls AddEdge while those calls are in flight.
//
// # Example
//
//	g, err := graph.New(3)
//	if err != nil {
//		return err
//	}
//	_ = g.AddEdge(0, 1, 4)
//	_ = g.AddEdge(1, 2, 1)
package graph

import (
	"pathbench/pkg/apperror"
)

// MaxVertices is the largest vertex count New accepts. Larger requests are
// reported as resource exhaustion instead of attempting the allocation.
const MaxVertices = 1 << 27

// initialAdjacencyCap is the capacity of an adjacency list on its first append.
const initialAdjacencyCap = 4

// Edge is a directed, weighted edge stored in the adjacency list of its tail.
type Edge struct {
	To     int
	Weight int64
}

// Graph is a vertex-indexed collection of adjacency lists.
type Graph struct {
	adjacency [][]Edge
	edgeCount int
}

// New allocates a graph with vertexCount vertices and no edges.
func New(vertexCount int) (*Graph, error) {
	if vertexCount < 0 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"vertex count must be non-negative, got %d", vertexCount).
			WithField("vertex_count")
	}
	if vertexCount > MaxVertices {
		return nil, apperror.Newf(apperror.CodeResourceExhausted,
			"vertex count %d exceeds limit %d", vertexCount, MaxVertices).
			WithDetails("vertex_count", vertexCount).
			WithDetails("max_vertices", MaxVertices)
	}

	return &Graph{
		adjacency: make([][]Edge, vertexCount),
	}, nil
}

// MustNew is New for statically known sizes; it panics on error.
func MustNew(vertexCount int) *Graph {
	g, err := New(vertexCount)
	if err != nil {
		panic(err)
	}
	return g
}

// AddEdge appends the directed edge u -> v with the given weight.
// Both endpoints must lie in [0, VertexCount()) and the weight must be
// non-negative; otherwise the graph is left unchanged and an error with code
// INVALID_VERTEX or NEGATIVE_WEIGHT is returned.
func (g *Graph) AddEdge(u, v int, weight int64) error {
	if err := g.checkVertex(u, "u"); err != nil {
		return err
	}
	if err := g.checkVertex(v, "v"); err != nil {
		return err
	}
	if weight < 0 {
		return apperror.Newf(apperror.CodeNegativeWeight,
			"edge %d->%d has negative weight %d", u, v, weight).
			WithField("weight").
			WithDetails("weight", weight)
	}

	if g.adjacency[u] == nil {
		g.adjacency[u] = make([]Edge, 0, initialAdjacencyCap)
	}
	g.adjacency[u] = append(g.adjacency[u], Edge{To: v, Weight: weight})
	g.edgeCount++

	return nil
}

func (g *Graph) checkVertex(v int, field string) error {
	if v < 0 || v >= len(g.adjacency) {
		return apperror.Newf(apperror.CodeInvalidVertex,
			"vertex %d out of range [0, %d)", v, len(g.adjacency)).
			WithField(field).
			WithDetails("vertex", v)
	}
	return nil
}

// VertexCount returns the number of vertices fixed at construction.
func (g *Graph) VertexCount() int {
	return len(g.adjacency)
}

// EdgeCount returns the number of directed edges added so far.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// HasVertex reports whether v is a valid vertex id.
func (g *Graph) HasVertex(v int) bool {
	return v >= 0 && v < len(g.adjacency)
}

// Neighbors returns the outgoing edges of u in insertion order.
// The slice shares storage with the graph and must not be modified.
// An invalid u yields nil.
func (g *Graph) Neighbors(u int) []Edge {
	if !g.HasVertex(u) {
		return nil
	}
	return g.adjacency[u]
}

// OutDegree returns the number of outgoing edges of u.
func (g *Graph) OutDegree(u int) int {
	return len(g.Neighbors(u))
}
