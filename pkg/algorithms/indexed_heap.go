package algorithms

import (
	"pathbench/pkg/apperror"
)

// =============================================================================
// Indexed Binary Min-Heap
// =============================================================================
//
// IndexedMinHeap is a binary min-heap over the vertex ids [0, n) keyed by a
// mutable int64 distance. Next to the heap arrangement it keeps a position
// array (vertex -> slot), so a vertex can be located and moved without
// searching the heap.
//
// Layout (struct of arrays, no per-element allocation):
//
//	order[i]     vertex stored in slot i; children of i are 2i+1 and 2i+2
//	position[v]  slot currently holding v
//	key[v]       comparison key of v
//	size         slots [0, size) are live, [size, n) hold extracted vertices
//
// Invariants for every live slot i:
//
//	key[order[i]] <= key[order[child]] for each live child
//	position[order[i]] == i
//
// Time Complexity:
//   - ExtractMin:  O(log n)
//   - DecreaseKey: O(log n)
//   - Contains / Position / Key: O(1)
//
// Ordering among equal keys is not deterministic: it depends on which
// vertex the removal swap moves into the root. Callers must not rely on it.
// =============================================================================

// IndexedMinHeap is an index-addressable binary min-heap over vertex ids.
// It is not safe for concurrent use.
type IndexedMinHeap struct {
	order    []int
	position []int
	key      []int64
	size     int
}

// NewIndexedMinHeap builds a heap holding every vertex 0..len(keys)-1 with
// order[i] = i and position[i] = i. Keys are copied. No heap repair is done:
// the caller is expected to seed equal keys except for at most one vertex and
// then fix that vertex with a single DecreaseKey.
func NewIndexedMinHeap(keys []int64) *IndexedMinHeap {
	h := &IndexedMinHeap{}
	h.Reset(keys)
	return h
}

// Reset re-seeds the heap for a fresh run with len(keys) vertices, reusing
// the existing buffers when they are large enough.
func (h *IndexedMinHeap) Reset(keys []int64) {
	n := len(keys)
	h.order = resizeInts(h.order, n)
	h.position = resizeInts(h.position, n)
	if cap(h.key) >= n {
		h.key = h.key[:n]
	} else {
		h.key = make([]int64, n)
	}

	for i := 0; i < n; i++ {
		h.order[i] = i
		h.position[i] = i
	}
	copy(h.key, keys)
	h.size = n
}

func resizeInts(s []int, n int) []int {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int, n)
}

// Len returns the number of live vertices.
func (h *IndexedMinHeap) Len() int {
	return h.size
}

// Cap returns the number of vertices the heap was seeded with.
func (h *IndexedMinHeap) Cap() int {
	return len(h.order)
}

// Contains reports whether v is still live (not yet extracted).
func (h *IndexedMinHeap) Contains(v int) bool {
	return v >= 0 && v < len(h.position) && h.position[v] < h.size
}

// Position returns the slot of v in the heap arrangement. For an extracted
// vertex the slot lies at or past Len().
func (h *IndexedMinHeap) Position(v int) int {
	return h.position[v]
}

// Key returns the current key of v.
func (h *IndexedMinHeap) Key(v int) int64 {
	return h.key[v]
}

// Peek returns the live vertex with the smallest key without removing it.
func (h *IndexedMinHeap) Peek() (int, error) {
	if h.size == 0 {
		return 0, apperror.New(apperror.CodeEmptyHeap, "peek on empty heap")
	}
	return h.order[0], nil
}

// ExtractMin removes and returns the live vertex with the smallest key.
// The root is swapped with the last live slot, the live region shrinks by
// one and the new root is sifted down. Returns EMPTY_HEAP when no vertex is
// live.
func (h *IndexedMinHeap) ExtractMin() (int, error) {
	if h.size == 0 {
		return 0, apperror.New(apperror.CodeEmptyHeap, "extract from empty heap")
	}

	root := h.order[0]
	h.size--
	h.swap(0, h.size)
	h.siftDown(0)

	return root, nil
}

// DecreaseKey lowers the key of a live vertex to newKey and sifts it up.
//
// Errors:
//   - INVALID_VERTEX if v is out of range or already extracted
//   - KEY_NOT_DECREASED if newKey is larger than the current key
//
// An equal key is accepted and leaves the arrangement unchanged. On error the
// heap is not modified.
func (h *IndexedMinHeap) DecreaseKey(v int, newKey int64) error {
	if v < 0 || v >= len(h.position) {
		return apperror.Newf(apperror.CodeInvalidVertex,
			"vertex %d out of range [0, %d)", v, len(h.position)).
			WithField("vertex")
	}
	if h.position[v] >= h.size {
		return apperror.Newf(apperror.CodeInvalidVertex,
			"vertex %d already extracted", v).
			WithField("vertex")
	}
	if newKey > h.key[v] {
		return apperror.Newf(apperror.CodeKeyNotDecreased,
			"new key %d is larger than current key %d of vertex %d", newKey, h.key[v], v).
			WithDetails("vertex", v).
			WithDetails("current_key", h.key[v]).
			WithDetails("new_key", newKey)
	}

	h.key[v] = newKey
	h.siftUp(h.position[v])
	return nil
}

// siftUp moves the vertex at slot i towards the root while its parent has a
// larger key.
func (h *IndexedMinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.key[h.order[parent]] <= h.key[h.order[i]] {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

// siftDown moves the vertex at slot i towards the leaves, always swapping
// with the smaller child, until both live children have keys not smaller
// than its own.
func (h *IndexedMinHeap) siftDown(i int) {
	for {
		smallest := i
		left := 2*i + 1
		right := left + 1

		if left < h.size && h.key[h.order[left]] < h.key[h.order[smallest]] {
			smallest = left
		}
		if right < h.size && h.key[h.order[right]] < h.key[h.order[smallest]] {
			smallest = right
		}
		if smallest == i {
			return
		}

		h.swap(i, smallest)
		i = smallest
	}
}

// swap exchanges two slots and keeps position in sync for both vertices.
func (h *IndexedMinHeap) swap(i, j int) {
	h.order[i], h.order[j] = h.order[j], h.order[i]
	h.position[h.order[i]] = i
	h.position[h.order[j]] = j
}
