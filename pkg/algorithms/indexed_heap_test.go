package algorithms

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathbench/pkg/apperror"
)

// =============================================================================
// Helpers
// =============================================================================

func uniformKeys(n int, key int64) []int64 {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = key
	}
	return keys
}

// requireHeapInvariants checks heap order over the live region and that
// position is the inverse of order over all slots.
func requireHeapInvariants(t *testing.T, h *IndexedMinHeap) {
	t.Helper()

	seen := make([]bool, len(h.order))
	for i, v := range h.order {
		require.False(t, seen[v], "vertex %d appears twice in order", v)
		seen[v] = true
		require.Equal(t, i, h.position[v], "position[%d]", v)
	}

	for i := 0; i < h.size; i++ {
		for _, c := range []int{2*i + 1, 2*i + 2} {
			if c < h.size {
				require.LessOrEqual(t, h.key[h.order[i]], h.key[h.order[c]],
					"slot %d violates heap order with child %d", i, c)
			}
		}
	}
}

// =============================================================================
// Construction
// =============================================================================

func TestNewIndexedMinHeap(t *testing.T) {
	keys := []int64{5, 5, 5, 5}
	h := NewIndexedMinHeap(keys)

	assert.Equal(t, 4, h.Len())
	assert.Equal(t, 4, h.Cap())
	for v := 0; v < 4; v++ {
		assert.Equal(t, v, h.Position(v))
		assert.Equal(t, int64(5), h.Key(v))
		assert.True(t, h.Contains(v))
	}

	keys[0] = 1
	assert.Equal(t, int64(5), h.Key(0), "keys are copied")
}

func TestNewIndexedMinHeap_Empty(t *testing.T) {
	h := NewIndexedMinHeap(nil)

	assert.Equal(t, 0, h.Len())
	_, err := h.ExtractMin()
	assert.True(t, apperror.Is(err, apperror.CodeEmptyHeap))
	_, err = h.Peek()
	assert.True(t, apperror.Is(err, apperror.CodeEmptyHeap))
}

func TestIndexedMinHeap_Reset(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(8, Infinity))
	require.NoError(t, h.DecreaseKey(3, 1))
	_, err := h.ExtractMin()
	require.NoError(t, err)

	t.Run("shrink", func(t *testing.T) {
		h.Reset(uniformKeys(3, 9))
		assert.Equal(t, 3, h.Len())
		for v := 0; v < 3; v++ {
			assert.Equal(t, v, h.Position(v))
			assert.Equal(t, int64(9), h.Key(v))
		}
		requireHeapInvariants(t, h)
	})

	t.Run("grow", func(t *testing.T) {
		h.Reset(uniformKeys(20, 2))
		assert.Equal(t, 20, h.Len())
		requireHeapInvariants(t, h)
	})
}

// =============================================================================
// ExtractMin
// =============================================================================

func TestIndexedMinHeap_ExtractMin_SortedOrder(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(6, Infinity))
	for v, k := range []int64{40, 10, 30, 0, 20, 50} {
		require.NoError(t, h.DecreaseKey(v, k))
		requireHeapInvariants(t, h)
	}

	var got []int
	for h.Len() > 0 {
		v, err := h.ExtractMin()
		require.NoError(t, err)
		requireHeapInvariants(t, h)
		assert.False(t, h.Contains(v))
		got = append(got, v)
	}

	assert.Equal(t, []int{3, 1, 4, 2, 0, 5}, got)
}

func TestIndexedMinHeap_ExtractMin_Empty(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(2, 0))

	_, err := h.ExtractMin()
	require.NoError(t, err)
	_, err = h.ExtractMin()
	require.NoError(t, err)

	_, err = h.ExtractMin()
	require.Error(t, err)
	assert.Equal(t, apperror.CodeEmptyHeap, apperror.Code(err))
	assert.Equal(t, 0, h.Len(), "failed extract leaves size untouched")
}

func TestIndexedMinHeap_ExtractMin_ExtractedSlotsKeepPositions(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(5, Infinity))
	require.NoError(t, h.DecreaseKey(2, 0))

	v, err := h.ExtractMin()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 4, h.Position(2), "extracted vertex parks in the last live slot")
	requireHeapInvariants(t, h)
}

func TestIndexedMinHeap_Peek(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(3, Infinity))
	require.NoError(t, h.DecreaseKey(1, 4))

	v, err := h.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 3, h.Len(), "peek does not remove")
}

// =============================================================================
// DecreaseKey
// =============================================================================

func TestIndexedMinHeap_DecreaseKey_MovesToRoot(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(16, Infinity))

	require.NoError(t, h.DecreaseKey(15, 0))

	assert.Equal(t, 0, h.Position(15))
	requireHeapInvariants(t, h)
}

func TestIndexedMinHeap_DecreaseKey_EqualKeyIsNoop(t *testing.T) {
	h := NewIndexedMinHeap(uniformKeys(4, 7))

	require.NoError(t, h.DecreaseKey(2, 7))

	for v := 0; v < 4; v++ {
		assert.Equal(t, v, h.Position(v))
	}
}

func TestIndexedMinHeap_DecreaseKey_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(h *IndexedMinHeap)
		vertex int
		key    int64
		code   apperror.ErrorCode
	}{
		{
			name:   "negative vertex",
			vertex: -1,
			key:    0,
			code:   apperror.CodeInvalidVertex,
		},
		{
			name:   "vertex past the end",
			vertex: 4,
			key:    0,
			code:   apperror.CodeInvalidVertex,
		},
		{
			name: "extracted vertex",
			setup: func(h *IndexedMinHeap) {
				_ = h.DecreaseKey(1, 0)
				_, _ = h.ExtractMin()
			},
			vertex: 1,
			key:    0,
			code:   apperror.CodeInvalidVertex,
		},
		{
			name:   "larger key",
			setup:  func(h *IndexedMinHeap) { _ = h.DecreaseKey(2, 3) },
			vertex: 2,
			key:    4,
			code:   apperror.CodeKeyNotDecreased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewIndexedMinHeap(uniformKeys(4, 10))
			if tt.setup != nil {
				tt.setup(h)
			}

			orderBefore := append([]int(nil), h.order...)
			keysBefore := append([]int64(nil), h.key...)
			sizeBefore := h.size

			err := h.DecreaseKey(tt.vertex, tt.key)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))

			assert.Equal(t, orderBefore, h.order, "heap must be untouched")
			assert.Equal(t, keysBefore, h.key, "keys must be untouched")
			assert.Equal(t, sizeBefore, h.size)
		})
	}
}

// =============================================================================
// Randomised model check
// =============================================================================

// TestIndexedMinHeap_RandomOperations interleaves decrease-key and
// extract-min and compares every extraction against a brute-force minimum
// over the live keys.
func TestIndexedMinHeap_RandomOperations(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		n := 1 + rng.IntN(200)

		h := NewIndexedMinHeap(uniformKeys(n, Infinity))
		model := make(map[int]int64, n)
		for v := 0; v < n; v++ {
			model[v] = Infinity
		}

		for len(model) > 0 {
			if rng.IntN(3) > 0 {
				v := rng.IntN(n)
				cur, live := model[v]
				if !live {
					continue
				}
				newKey := rng.Int64N(1000)
				if newKey > cur {
					continue
				}
				require.NoError(t, h.DecreaseKey(v, newKey))
				model[v] = newKey
			} else {
				v, err := h.ExtractMin()
				require.NoError(t, err)

				minKey := Infinity
				for _, k := range model {
					if k < minKey {
						minKey = k
					}
				}
				require.Equal(t, minKey, model[v], "seed %d: extracted key is not the live minimum", seed)
				delete(model, v)
			}

			require.Equal(t, len(model), h.Len())
			requireHeapInvariants(t, h)
		}
	}
}

// TestIndexedMinHeap_HeapSort drains a heap built through decrease-key and
// expects keys in non-decreasing order.
func TestIndexedMinHeap_HeapSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	const n = 1000

	keys := make([]int64, n)
	h := NewIndexedMinHeap(uniformKeys(n, Infinity))
	for v := 0; v < n; v++ {
		keys[v] = rng.Int64N(10_000)
		require.NoError(t, h.DecreaseKey(v, keys[v]))
	}

	got := make([]int64, 0, n)
	for h.Len() > 0 {
		v, err := h.ExtractMin()
		require.NoError(t, err)
		got = append(got, keys[v])
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	assert.Equal(t, keys, got)
}
