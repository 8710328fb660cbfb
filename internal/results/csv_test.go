package results

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathbench/internal/bench"
	"pathbench/internal/scenario"
	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
)

func newCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	st, err := NewCSVStore(filepath.Join(t.TempDir(), "out"), "summary.csv", "samples.csv")
	require.NoError(t, err)
	return st
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

// ============================================================================
// Summaries
// ============================================================================

func TestCSVStore_SaveSummary_Upsert(t *testing.T) {
	st := newCSVStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSummary(ctx, Summary{Size: "Small", Case: "Best", Mean: 0.5, Max: 1, Min: 0.25, Total: 15, StdDev: 0.1}))
	require.NoError(t, st.SaveSummary(ctx, Summary{Size: "Large", Case: "Worst", Mean: 2}))
	require.NoError(t, st.SaveSummary(ctx, Summary{Size: "Small", Case: "Best", Mean: 0.75}))

	lines := readLines(t, st.SummaryPath())
	require.Len(t, lines, 3)
	assert.Equal(t, "Size,Case,Mean (s),Max (s),Min (s),Total (s),StdDev (s)", lines[0])
	assert.Equal(t, "Small,Best,0.750000,0.000000,0.000000,0.000000,0.000000", lines[1], "updated in place")
	assert.True(t, strings.HasPrefix(lines[2], "Large,Worst,2.000000"))
}

func TestCSVStore_SaveSummary_RepairsFile(t *testing.T) {
	st := newCSVStore(t)
	ctx := context.Background()

	// Заголовок не первым и дубликат ключа
	content := "Small,Best,1,1,1,1,0\n" +
		"Size,Case,Mean (s),Max (s),Min (s),Total (s),StdDev (s)\n" +
		"Medium,Average,2,2,2,2,0\n" +
		"Small,Best,9,9,9,9,0\n"
	require.NoError(t, os.WriteFile(st.SummaryPath(), []byte(content), 0o644))

	require.NoError(t, st.SaveSummary(ctx, Summary{Size: "Medium", Case: "Average", Mean: 3}))

	lines := readLines(t, st.SummaryPath())
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Size,Case"))
	assert.Equal(t, "Small,Best,1,1,1,1,0", lines[1], "first occurrence wins")
	assert.True(t, strings.HasPrefix(lines[2], "Medium,Average,3.000000"))
}

func TestCSVStore_ListSummaries(t *testing.T) {
	st := newCSVStore(t)
	ctx := context.Background()

	sums, err := st.ListSummaries(ctx)
	require.NoError(t, err)
	assert.Empty(t, sums)

	content := "Size,Case,Mean (s),Max (s),Min (s),Total (s),StdDev (s)\n" +
		"Small,Best,0.5,1,0.25,15,0.1\n" +
		"Small,Average,not-a-number,1,1,1,1\n" +
		"short\n"
	require.NoError(t, os.WriteFile(st.SummaryPath(), []byte(content), 0o644))

	sums, err = st.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, Summary{Size: "Small", Case: "Best", Mean: 0.5, Max: 1, Min: 0.25, Total: 15, StdDev: 0.1}, sums[0])
}

// ============================================================================
// Samples
// ============================================================================

func TestCSVStore_SaveSamples_Replace(t *testing.T) {
	st := newCSVStore(t)
	ctx := context.Background()
	small := Key{Size: "Small", Case: "Best"}
	large := Key{Size: "Large", Case: "Worst"}

	require.NoError(t, st.SaveSamples(ctx, small, []float64{0.1, 0.2, 0.3}))
	require.NoError(t, st.SaveSamples(ctx, large, []float64{1.5}))
	require.NoError(t, st.SaveSamples(ctx, small, []float64{0.123456789}))

	lines := readLines(t, st.SamplesPath())
	assert.Equal(t, []string{
		"Size,Case,Run,Time (s)",
		"Large,Worst,1,1.50000000",
		"Small,Best,1,0.12345679",
	}, lines)

	got, err := st.ListSamples(ctx, small)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.12345679}, got)

	got, err = st.ListSamples(ctx, Key{Size: "Medium", Case: "Best"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVStore_ListSamples_Malformed(t *testing.T) {
	st := newCSVStore(t)
	require.NoError(t, os.WriteFile(st.SamplesPath(), []byte("Small,Best,1,x\n"), 0o644))

	_, err := st.ListSamples(context.Background(), Key{Size: "Small", Case: "Best"})
	assert.True(t, apperror.Is(err, apperror.CodeStorageError))
}

func TestNewCSVStore_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewCSVStore(filepath.Join(file, "sub"), "a.csv", "b.csv")
	assert.True(t, apperror.Is(err, apperror.CodeStorageError))
}

// ============================================================================
// SaveReport
// ============================================================================

func TestSaveReport(t *testing.T) {
	st := newCSVStore(t)
	ctx := context.Background()

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &bench.Report{
		RunID:     "run-1",
		Scenario:  scenario.Scenario{Size: "Medium", Case: "Worst"},
		Graph:     graph.Statistics{VertexCount: 10, EdgeCount: 90},
		StartedAt: started,
		Elapsed:   time.Second,
		Samples:   []float64{1, 3},
		Stats:     bench.ComputeStats([]float64{1, 3}),
	}

	sum := SummaryFromReport(r)
	assert.Equal(t, 2, sum.Repetitions)
	assert.Equal(t, 90, sum.Edges)
	assert.Equal(t, started.Add(time.Second), sum.UpdatedAt)

	require.NoError(t, SaveReport(ctx, st, r))

	sums, err := st.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 2.0, sums[0].Mean)
	assert.Equal(t, 1.0, sums[0].StdDev)

	samples, err := st.ListSamples(ctx, Key{Size: "Medium", Case: "Worst"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, samples)
}
