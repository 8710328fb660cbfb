package loader

import (
	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
)

// MaxGeneratedEdges bounds the edge count of generated graphs.
const MaxGeneratedEdges = 1 << 28

// Complete builds the undirected complete graph on n vertices: every ordered
// pair of distinct vertices is joined by an edge of the given weight.
func Complete(n int, weight int64) (*graph.Graph, error) {
	if n > 1 && int64(n)*int64(n-1) > MaxGeneratedEdges {
		return nil, apperror.Newf(apperror.CodeResourceExhausted,
			"complete graph on %d vertices exceeds %d edges", n, MaxGeneratedEdges).
			WithDetails("vertices", n)
	}

	g, err := graph.New(n)
	if err != nil {
		return nil, err
	}
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if err := addUndirected(g, u, v, weight); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Chain builds the path 0-1-...-(n-1) with edges in both directions.
func Chain(n int, weight int64) (*graph.Graph, error) {
	g, err := graph.New(n)
	if err != nil {
		return nil, err
	}
	for u := 0; u+1 < n; u++ {
		if err := addUndirected(g, u, u+1, weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Grid builds a rows x cols 4-neighbour lattice. Vertex (r, c) has index
// r*cols + c.
func Grid(rows, cols int, weight int64) (*graph.Graph, error) {
	if rows < 0 || cols < 0 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"grid dimensions must be non-negative, got %dx%d", rows, cols)
	}
	if rows > 0 && cols > graph.MaxVertices/rows {
		return nil, apperror.Newf(apperror.CodeResourceExhausted,
			"grid %dx%d exceeds %d vertices", rows, cols, graph.MaxVertices)
	}

	g, err := graph.New(rows * cols)
	if err != nil {
		return nil, err
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := r*cols + c
			if c+1 < cols {
				if err := addUndirected(g, v, v+1, weight); err != nil {
					return nil, err
				}
			}
			if r+1 < rows {
				if err := addUndirected(g, v, v+cols, weight); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}

func addUndirected(g *graph.Graph, u, v int, weight int64) error {
	if err := g.AddEdge(u, v, weight); err != nil {
		return err
	}
	return g.AddEdge(v, u, weight)
}
