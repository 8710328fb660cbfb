package results

import (
	"context"
	"time"

	"pathbench/pkg/apperror"
	"pathbench/pkg/logger"
	"pathbench/pkg/metrics"
	"pathbench/pkg/telemetry"
)

// SampleLister реализуется хранилищами, умеющими читать замеры обратно
type SampleLister interface {
	ListSamples(ctx context.Context, key Key) ([]float64, error)
}

// Instrumented добавляет span, метрики и логирование к записи в хранилище
type Instrumented struct {
	Store
	backend string
	metrics *metrics.Metrics
}

// NewInstrumented оборачивает st. m может быть nil.
func NewInstrumented(st Store, backend string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{Store: st, backend: backend, metrics: m}
}

// Backend возвращает имя бэкенда
func (s *Instrumented) Backend() string { return s.backend }

func (s *Instrumented) SaveSummary(ctx context.Context, sum Summary) error {
	return s.observe(ctx, "results.save_summary", 1, func(ctx context.Context) error {
		return s.Store.SaveSummary(ctx, sum)
	})
}

func (s *Instrumented) SaveSamples(ctx context.Context, key Key, samples []float64) error {
	return s.observe(ctx, "results.save_samples", len(samples), func(ctx context.Context) error {
		return s.Store.SaveSamples(ctx, key, samples)
	})
}

// ListSamples делегирует обёрнутому хранилищу, если оно это поддерживает
func (s *Instrumented) ListSamples(ctx context.Context, key Key) ([]float64, error) {
	l, ok := s.Store.(SampleLister)
	if !ok {
		return nil, apperror.Newf(apperror.CodeUnimplemented,
			"backend %s cannot list samples", s.backend)
	}
	return l.ListSamples(ctx, key)
}

func (s *Instrumented) observe(ctx context.Context, op string, rows int, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, op,
		telemetry.WithAttributes(telemetry.StoreAttributes(s.backend, rows)...))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	s.metrics.RecordStoreWrite(s.backend, err == nil, d)

	log := logger.WithContext(ctx)
	if err != nil {
		telemetry.SetError(ctx, err)
		log.Error("Result write failed", "op", op, "backend", s.backend, "error", err)
		return err
	}
	log.Debug("Result written", "op", op, "backend", s.backend, "rows", rows, "duration", d)
	return nil
}
