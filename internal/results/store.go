// Package results persists benchmark summaries and per-repetition samples.
//
// Every backend keys rows by (size, case): saving a summary replaces the
// previous summary of that pair, saving samples replaces all previous samples
// of that pair.
package results

import (
	"context"
	"time"

	"pathbench/internal/bench"
)

// Summary is the aggregated outcome of one benchmark.
type Summary struct {
	Size   string
	Case   string
	Mean   float64
	Max    float64
	Min    float64
	Total  float64
	StdDev float64

	// Optional metadata. The CSV backend does not keep it.
	Repetitions int
	Vertices    int
	Edges       int
	RunID       string
	UpdatedAt   time.Time
}

// Key identifies the summary's rows.
func (s Summary) Key() Key {
	return Key{Size: s.Size, Case: s.Case}
}

// Key is the (size, case) pair rows are keyed by.
type Key struct {
	Size string
	Case string
}

// Store is a result backend.
type Store interface {
	// SaveSummary inserts or replaces the summary of (s.Size, s.Case).
	SaveSummary(ctx context.Context, s Summary) error

	// SaveSamples replaces every stored sample of key with samples, numbered
	// from 1 in order.
	SaveSamples(ctx context.Context, key Key, samples []float64) error

	// ListSummaries returns all stored summaries.
	ListSummaries(ctx context.Context) ([]Summary, error)

	Close() error
}

// SummaryFromReport extracts the stored summary of a benchmark report.
func SummaryFromReport(r *bench.Report) Summary {
	return Summary{
		Size:        r.Scenario.Size,
		Case:        r.Scenario.Case,
		Mean:        r.Stats.Mean,
		Max:         r.Stats.Max,
		Min:         r.Stats.Min,
		Total:       r.Stats.Total,
		StdDev:      r.Stats.StdDev,
		Repetitions: len(r.Samples),
		Vertices:    r.Graph.VertexCount,
		Edges:       r.Graph.EdgeCount,
		RunID:       r.RunID,
		UpdatedAt:   r.StartedAt.Add(r.Elapsed).UTC(),
	}
}

// SaveReport writes both the summary and the samples of r.
func SaveReport(ctx context.Context, st Store, r *bench.Report) error {
	s := SummaryFromReport(r)
	if err := st.SaveSamples(ctx, s.Key(), r.Samples); err != nil {
		return err
	}
	return st.SaveSummary(ctx, s)
}

// NopStore discards everything. Used for the "none" backend.
type NopStore struct{}

func (NopStore) SaveSummary(context.Context, Summary) error { return nil }
func (NopStore) SaveSamples(context.Context, Key, []float64) error { return nil }
func (NopStore) ListSummaries(context.Context) ([]Summary, error) { return nil, nil }
func (NopStore) Close() error { return nil }
