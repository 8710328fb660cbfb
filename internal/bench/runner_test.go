package bench

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathbench/internal/loader"
	"pathbench/internal/scenario"
	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/graph"
	"pathbench/pkg/metrics"
)

func chainInput(t *testing.T, n int) Input {
	t.Helper()
	g, err := loader.Chain(n, 1)
	require.NoError(t, err)
	return Input{
		Scenario: scenario.Scenario{Key: "c", Size: "Small", Case: "Best", Kind: scenario.KindChain},
		Graph:    g,
	}
}

// ============================================================================
// Runner
// ============================================================================

func TestRunner_Run(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, "test", "bench")
	r := NewRunner(Options{Repetitions: 5, VerifyRuns: true, CrossCheck: true}, m)

	var reps []int
	in := chainInput(t, 50)
	in.OnRepetition = func(rep int, d time.Duration) {
		reps = append(reps, rep)
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}

	report, err := r.Run(context.Background(), in)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, reps)
	assert.Len(t, report.Samples, 5)
	assert.Equal(t, 50, report.Reachable)
	assert.Equal(t, 50, report.Graph.VertexCount)
	assert.Equal(t, 98, report.Graph.EdgeCount)
	assert.InDelta(t, report.Stats.Total, report.Stats.Mean*5, 1e-12)
	assert.LessOrEqual(t, report.Stats.Min, report.Stats.Max)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BenchRunsTotal.WithLabelValues("Small/Best", "success")))
	assert.Equal(t, float64(50), testutil.ToFloat64(m.ReachableVertices.WithLabelValues("Small/Best")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.BenchRunsInFlight))
}

func TestRunner_NilMetrics(t *testing.T) {
	r := NewRunner(Options{Repetitions: 2}, nil)
	report, err := r.Run(context.Background(), chainInput(t, 3))
	require.NoError(t, err)
	assert.Len(t, report.Samples, 2)
}

func TestRunner_Unreachable(t *testing.T) {
	g := graph.MustNew(4)
	require.NoError(t, g.AddEdge(0, 1, 3))
	require.NoError(t, g.AddEdge(2, 3, 1))

	r := NewRunner(Options{Repetitions: 3, VerifyRuns: true}, nil)
	report, err := r.Run(context.Background(), Input{Graph: g})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Reachable)
}

func TestRunner_Errors(t *testing.T) {
	r := NewRunner(Options{Repetitions: 1}, nil)

	_, err := r.Run(context.Background(), Input{})
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))

	in := chainInput(t, 3)
	in.Source = 3
	_, err = r.Run(context.Background(), in)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidSource))

	_, err = NewRunner(Options{}, nil).Run(context.Background(), chainInput(t, 3))
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
}

func TestRunner_Cancelled(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, "test", "cancel")
	r := NewRunner(Options{Repetitions: 3}, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, chainInput(t, 10))
	assert.Nil(t, report)
	assert.True(t, apperror.Is(err, apperror.CodeCancelled))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BenchRunsTotal.WithLabelValues("Small/Best", "error")))
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner(Options{Repetitions: 3, Timeout: time.Hour}, nil)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := r.Run(ctx, chainInput(t, 10))
	assert.True(t, apperror.Is(err, apperror.CodeTimeout))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(&config.BenchConfig{
		Repetitions: 30,
		Timeout:     time.Minute,
		VerifyRuns:  true,
	})
	assert.Equal(t, Options{Repetitions: 30, Timeout: time.Minute, VerifyRuns: true}, opts)
}

func TestInputFromBuilt(t *testing.T) {
	g := graph.MustNew(2)
	in := InputFromBuilt(&scenario.Built{
		Scenario: scenario.Scenario{Key: "1"},
		Graph:    g,
		Source:   1,
	})
	assert.Same(t, g, in.Graph)
	assert.Equal(t, 1, in.Source)
	assert.Equal(t, "1", in.Scenario.Key)
}

// ============================================================================
// Stats
// ============================================================================

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.StdDev, 1e-12, "population standard deviation")
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 40.0, s.Total)
	assert.Equal(t, 4.5, s.Median)
	assert.Equal(t, 9.0, s.P95)
}

func TestComputeStats_Edges(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))

	s := ComputeStats([]float64{0.25})
	assert.Equal(t, 0.25, s.Mean)
	assert.Zero(t, s.StdDev)
	assert.Equal(t, 0.25, s.Median)
	assert.Equal(t, 0.25, s.P95)

	same := ComputeStats([]float64{1e-6, 1e-6, 1e-6})
	assert.False(t, math.IsNaN(same.StdDev))
	assert.InDelta(t, 0, same.StdDev, 1e-18)
}
