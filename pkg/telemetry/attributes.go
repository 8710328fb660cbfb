package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphNodes  = "graph.nodes"
	AttrGraphEdges  = "graph.edges"
	AttrGraphKind   = "graph.kind"
	AttrGraphSource = "graph.source"

	// Бенчмарк
	AttrRunID       = "bench.run_id"
	AttrScenario    = "bench.scenario"
	AttrSize        = "bench.size"
	AttrCase        = "bench.case"
	AttrRepetitions = "bench.repetitions"
	AttrRepetition  = "bench.repetition"
	AttrDuration    = "bench.duration_seconds"

	// Алгоритм
	AttrReachable   = "algorithm.reachable"
	AttrRelaxations = "algorithm.relaxations"

	// Хранилище
	AttrStoreBackend = "store.backend"
	AttrStoreRows    = "store.rows"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(kind string, nodes, edges, source int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrGraphKind, kind),
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int(AttrGraphSource, source),
	}
}

// ScenarioAttributes возвращает атрибуты сценария бенчмарка
func ScenarioAttributes(runID, size, caseName string, repetitions int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRunID, runID),
		attribute.String(AttrScenario, size+"/"+caseName),
		attribute.String(AttrSize, size),
		attribute.String(AttrCase, caseName),
		attribute.Int(AttrRepetitions, repetitions),
	}
}

// RepetitionAttributes возвращает атрибуты одного повторения
func RepetitionAttributes(index int, seconds float64, reachable, relaxations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrRepetition, index),
		attribute.Float64(AttrDuration, seconds),
		attribute.Int(AttrReachable, reachable),
		attribute.Int(AttrRelaxations, relaxations),
	}
}

// StoreAttributes возвращает атрибуты записи в хранилище
func StoreAttributes(backend string, rows int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStoreBackend, backend),
		attribute.Int(AttrStoreRows, rows),
	}
}
