package algorithms

import (
	"sync"
)

// =============================================================================
// Scratch Pool
// =============================================================================

// maxPooledVertices bounds the size of buffers kept in the pool. Larger
// buffers are dropped on release so one huge run does not pin its memory.
const maxPooledVertices = 1 << 20

// scratch is the per-run working set of a shortest-path computation: the
// indexed heap and the visited set. The distance vector is never pooled,
// it is handed to the caller.
type scratch struct {
	heap    IndexedMinHeap
	visited []bool
}

// ScratchPool recycles shortest-path working sets between runs.
//
// A working set is owned by exactly one run between Acquire and Release and
// is fully re-seeded on every Acquire, so no state leaks from one run into
// the next. The pool is safe for concurrent use.
type ScratchPool struct {
	pool sync.Pool
}

// NewScratchPool creates an empty pool.
func NewScratchPool() *ScratchPool {
	return &ScratchPool{
		pool: sync.Pool{
			New: func() any {
				return &scratch{}
			},
		},
	}
}

// globalPool is the pool used by Dijkstra and ShortestPath.
var globalPool = NewScratchPool()

// acquire returns a working set whose heap is seeded with keys and whose
// visited set has len(keys) cleared entries.
func (p *ScratchPool) acquire(keys []int64) *scratch {
	s := p.pool.Get().(*scratch)
	s.heap.Reset(keys)

	n := len(keys)
	if cap(s.visited) >= n {
		s.visited = s.visited[:n]
		clear(s.visited)
	} else {
		s.visited = make([]bool, n)
	}
	return s
}

// release returns a working set to the pool. It is safe to pass nil.
func (p *ScratchPool) release(s *scratch) {
	if s == nil {
		return
	}
	if s.heap.Cap() > maxPooledVertices {
		return
	}
	p.pool.Put(s)
}
