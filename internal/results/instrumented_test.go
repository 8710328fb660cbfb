package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/metrics"
)

type failingStore struct {
	NopStore
	err error
}

func (s failingStore) SaveSummary(context.Context, Summary) error { return s.err }

func TestInstrumented_RecordsWrites(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "results")
	boom := apperror.New(apperror.CodeStorageError, "boom")
	st := NewInstrumented(failingStore{err: boom}, "fake", m)
	ctx := context.Background()

	require.NoError(t, st.SaveSamples(ctx, Key{Size: "Small", Case: "Best"}, []float64{1}))
	err := st.SaveSummary(ctx, Summary{Size: "Small", Case: "Best"})
	assert.True(t, errors.Is(err, boom))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreWritesTotal.WithLabelValues("fake", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreWritesTotal.WithLabelValues("fake", "error")))
	assert.Equal(t, "fake", st.Backend())
}

func TestInstrumented_ListSamples(t *testing.T) {
	st := NewInstrumented(NopStore{}, "none", nil)
	_, err := st.ListSamples(context.Background(), Key{})
	assert.True(t, apperror.Is(err, apperror.CodeUnimplemented))

	csvStore := newCSVStore(t)
	wrapped := NewInstrumented(csvStore, "csv", nil)
	ctx := context.Background()
	require.NoError(t, wrapped.SaveSamples(ctx, Key{Size: "Small", Case: "Best"}, []float64{0.5}))
	got, err := wrapped.ListSamples(ctx, Key{Size: "Small", Case: "Best"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Results: config.ResultsConfig{
		Backend:     "csv",
		Dir:         filepath.Join(t.TempDir(), "results"),
		SummaryFile: "s.csv",
		SamplesFile: "r.csv",
	}}
	st, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", st.Backend())
	assert.IsType(t, &CSVStore{}, st.Store)
	assert.NoError(t, st.Close())

	cfg.Results.Backend = "none"
	st, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, st.Store)

	cfg.Results.Backend = "sqlite"
	_, err = Open(ctx, cfg, nil)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidConfig))
}
