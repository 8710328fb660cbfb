package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func initInMemory(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	p, err := InitWithExporter(Config{
		Enabled:     true,
		ServiceName: "pathbench-test",
		Version:     "test",
		Environment: "test",
		SampleRate:  1,
	}, sdktrace.WithSyncer(exp))
	if err != nil {
		t.Fatalf("InitWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return exp
}

func TestInit_Disabled(t *testing.T) {
	cfg := Config{
		Enabled:     false,
		ServiceName: "test",
	}

	provider, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if provider == nil {
		t.Fatal("provider should not be nil")
	}

	if provider.tracer == nil {
		t.Error("tracer should not be nil even when disabled")
	}
}

func TestGet_Uninitialized(t *testing.T) {
	// Reset global
	globalProvider = nil

	provider := Get()
	if provider == nil {
		t.Fatal("Get() should return provider even when uninitialized")
	}

	if provider.tracer == nil {
		t.Error("tracer should not be nil")
	}
}

func TestStartSpan_Recorded(t *testing.T) {
	exp := initInMemory(t)

	ctx, span := StartSpan(context.Background(), "bench.run",
		WithAttributes(ScenarioAttributes("run-1", "Small", "Best", 30)...))
	AddEvent(ctx, "repetition", RepetitionAttributes(1, 0.002, 10, 9)...)
	SetAttributes(ctx, GraphAttributes("nodelink", 10, 20, 0)...)
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != "bench.run" {
		t.Errorf("span name = %s", got.Name)
	}
	if len(got.Events) != 1 || got.Events[0].Name != "repetition" {
		t.Errorf("unexpected events: %+v", got.Events)
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrScenario].AsString() != "Small/Best" {
		t.Errorf("scenario attr = %v", attrs[AttrScenario])
	}
	if attrs[AttrGraphNodes].AsInt64() != 10 {
		t.Errorf("nodes attr = %v", attrs[AttrGraphNodes])
	}
}

func TestSetError_MarksSpan(t *testing.T) {
	exp := initInMemory(t)

	ctx, span := StartSpan(context.Background(), "store.save")
	SetError(ctx, errors.New("disk full"))
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "disk full" {
		t.Errorf("description = %q", spans[0].Status.Description)
	}
}

func TestRecordError_KeepsStatus(t *testing.T) {
	exp := initInMemory(t)

	ctx, span := StartSpan(context.Background(), "load")
	RecordError(ctx, errors.New("skipped link"))
	span.End()

	spans := exp.GetSpans()
	if spans[0].Status.Code == codes.Error {
		t.Error("RecordError must not change status")
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected one exception event, got %d", len(spans[0].Events))
	}
}

func TestShutdown_ResetsGlobal(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p, err := InitWithExporter(Config{ServiceName: "x", SampleRate: 1}, sdktrace.WithSyncer(exp))
	if err != nil {
		t.Fatalf("InitWithExporter() error = %v", err)
	}
	if Get() != p {
		t.Fatal("InitWithExporter should install the global provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if Get() == p {
		t.Error("Get() should not return a shut down provider")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("sampler(0.5) = %s, want ratio based", got)
	}
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()
	span := SpanFromContext(ctx)

	// Should return noop span for context without span
	if span == nil {
		t.Error("SpanFromContext should return span (noop)")
	}
}

func TestProvider_Tracer(t *testing.T) {
	provider := &Provider{
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	tracer := provider.Tracer()
	if tracer == nil {
		t.Error("Tracer() should not return nil")
	}
}

func TestProvider_Shutdown(t *testing.T) {
	provider := &Provider{
		tp:     nil,
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	err := provider.Shutdown(context.Background())
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestGraphAttributes(t *testing.T) {
	attrs := GraphAttributes("complete", 500, 249500, 0)

	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d", len(attrs))
	}

	expected := map[string]bool{
		AttrGraphKind:   true,
		AttrGraphNodes:  true,
		AttrGraphEdges:  true,
		AttrGraphSource: true,
	}

	for _, attr := range attrs {
		key := string(attr.Key)
		if !expected[key] {
			t.Errorf("unexpected attribute key: %s", key)
		}
	}
}

func TestScenarioAttributes(t *testing.T) {
	attrs := ScenarioAttributes("id", "Large", "Worst", 30)

	if len(attrs) != 5 {
		t.Errorf("expected 5 attributes, got %d", len(attrs))
	}
}

func TestStoreAttributes(t *testing.T) {
	attrs := StoreAttributes("redis", 31)

	if len(attrs) != 2 {
		t.Errorf("expected 2 attributes, got %d", len(attrs))
	}
}
