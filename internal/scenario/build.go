package scenario

import (
	"context"
	"time"

	"pathbench/internal/loader"
	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
	"pathbench/pkg/logger"
	"pathbench/pkg/metrics"
	"pathbench/pkg/telemetry"
)

// Built is a materialised scenario ready to benchmark.
type Built struct {
	Scenario Scenario
	Graph    *graph.Graph
	Source   int

	// Skipped counts input records the loader dropped: node-link links with
	// unknown ids or OSM segments without coordinates.
	Skipped  int
	LoadTime time.Duration
}

// Builder materialises scenarios. Metrics may be nil.
type Builder struct {
	metrics *metrics.Metrics
}

// NewBuilder creates a builder reporting load metrics to m.
func NewBuilder(m *metrics.Metrics) *Builder {
	return &Builder{metrics: m}
}

// Build loads or generates the scenario's graph and resolves its source
// vertex.
func (b *Builder) Build(ctx context.Context, s Scenario) (*Built, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "scenario.build")
	defer span.End()

	log := logger.WithScenario(s.Size, s.Case)
	start := time.Now()

	built, err := b.materialise(ctx, s)
	if err != nil {
		telemetry.SetError(ctx, err)
		log.Error("Failed to build graph", "kind", s.Kind, "path", s.Path, "error", err)
		return nil, err
	}
	built.Scenario = s
	built.LoadTime = time.Since(start)

	if !built.Graph.HasVertex(built.Source) {
		err := apperror.Newf(apperror.CodeInvalidSource,
			"source %d out of range [0, %d)", built.Source, built.Graph.VertexCount()).
			WithField("source").
			WithDetails("scenario", s.Key)
		telemetry.SetError(ctx, err)
		return nil, err
	}

	n, m := built.Graph.VertexCount(), built.Graph.EdgeCount()
	b.metrics.RecordGraphLoad(string(s.Kind), n, m, built.LoadTime)
	telemetry.SetAttributes(ctx, telemetry.GraphAttributes(string(s.Kind), n, m, built.Source)...)

	log.Info("Graph ready",
		"kind", s.Kind,
		"vertices", n,
		"edges", m,
		"source", built.Source,
		"skipped", built.Skipped,
		"load_time", built.LoadTime,
	)
	if built.Skipped > 0 {
		log.Warn("Input records skipped", "count", built.Skipped)
	}

	return built, nil
}

func (b *Builder) materialise(ctx context.Context, s Scenario) (*Built, error) {
	switch s.Kind {
	case KindNodeLink:
		nl, err := loader.LoadNodeLink(s.Path)
		if err != nil {
			return nil, err
		}
		source := s.Source
		if s.SourceID != nil {
			v, ok := nl.IndexOf(*s.SourceID)
			if !ok {
				return nil, apperror.Newf(apperror.CodeInvalidSource,
					"source node id %d not in graph", *s.SourceID).
					WithField("source_id")
			}
			source = v
		}
		return &Built{Graph: nl.Graph, Source: source, Skipped: nl.SkippedLinks}, nil

	case KindOSM:
		rg, err := loader.LoadOSM(ctx, s.Path)
		if err != nil {
			return nil, err
		}
		source, err := resolveRoadSource(rg, s)
		if err != nil {
			return nil, err
		}
		return &Built{Graph: rg.Graph, Source: source, Skipped: rg.SkippedSegments}, nil

	case KindComplete:
		g, err := loader.Complete(s.Vertices, s.Weight)
		return generated(g, s, err)

	case KindChain:
		g, err := loader.Chain(s.Vertices, s.Weight)
		return generated(g, s, err)

	case KindGrid:
		g, err := loader.Grid(s.Rows, s.Cols, s.Weight)
		return generated(g, s, err)
	}

	return nil, apperror.Newf(apperror.CodeInvalidScenario, "unknown scenario kind %q", s.Kind)
}

func generated(g *graph.Graph, s Scenario, err error) (*Built, error) {
	if err != nil {
		return nil, err
	}
	return &Built{Graph: g, Source: s.Source}, nil
}

func resolveRoadSource(rg *loader.RoadGraph, s Scenario) (int, error) {
	switch {
	case s.SourceID != nil:
		v, ok := rg.IndexOf(*s.SourceID)
		if !ok {
			return 0, apperror.Newf(apperror.CodeInvalidSource,
				"source OSM node %d is not on a car-accessible road", *s.SourceID).
				WithField("source_id")
		}
		return v, nil

	case s.SourceLat != 0 || s.SourceLon != 0:
		v, meters, err := loader.NewSnapper(rg).Nearest(s.SourceLat, s.SourceLon)
		if err != nil {
			return 0, err
		}
		logger.Debug("Source snapped to road network",
			"lat", s.SourceLat, "lon", s.SourceLon,
			"vertex", v, "osm_node", rg.NodeIDs[v], "distance_m", meters)
		return v, nil
	}

	return s.Source, nil
}
