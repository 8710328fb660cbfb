package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик бенчмарка.
// Методы Record* безопасны для nil получателя: без метрик ничего не пишется.
type Metrics struct {
	// Бенчмарки
	BenchRunsTotal       *prometheus.CounterVec
	BenchRunDuration     *prometheus.HistogramVec
	BenchRunsInFlight    prometheus.Gauge
	ShortestPathDuration *prometheus.HistogramVec
	ReachableVertices    *prometheus.GaugeVec
	HeapOperationsTotal  *prometheus.CounterVec

	// Графы
	GraphLoadDuration *prometheus.HistogramVec
	GraphNodesTotal   *prometheus.HistogramVec
	GraphEdgesTotal   *prometheus.HistogramVec

	// Хранилище результатов
	StoreWritesTotal   *prometheus.CounterVec
	StoreWriteDuration *prometheus.HistogramVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики в prometheus.DefaultRegisterer
func InitMetrics(namespace, subsystem string) *Metrics {
	m := NewMetrics(prometheus.DefaultRegisterer, namespace, subsystem)
	defaultMetrics = m
	return m
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		BenchRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bench_runs_total",
				Help:      "Total number of benchmark runs",
			},
			[]string{"scenario", "status"},
		),

		BenchRunDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bench_run_duration_seconds",
				Help:      "Wall time of a whole benchmark, all repetitions included",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"scenario"},
		),

		BenchRunsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "bench_runs_in_flight",
				Help:      "Current number of benchmarks being executed",
			},
		),

		ShortestPathDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shortest_path_duration_seconds",
				Help:      "Duration of a single shortest-path computation",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
			},
			[]string{"scenario"},
		),

		ReachableVertices: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reachable_vertices",
				Help:      "Vertices reachable from the source in the last run",
			},
			[]string{"scenario"},
		),

		HeapOperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "heap_operations_total",
				Help:      "Indexed heap operations performed by shortest-path runs",
			},
			[]string{"op"},
		),

		GraphLoadDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_load_duration_seconds",
				Help:      "Time to load or generate a graph",
				Buckets:   []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30, 120},
			},
			[]string{"kind"},
		),

		GraphNodesTotal: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of vertices in benchmarked graphs",
				Buckets:   []float64{10, 100, 500, 1000, 5000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),

		GraphEdgesTotal: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in benchmarked graphs",
				Buckets:   []float64{20, 100, 1000, 10000, 100000, 1000000, 10000000, 50000000},
			},
			[]string{"kind"},
		),

		StoreWritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "store_writes_total",
				Help:      "Result store writes",
			},
			[]string{"backend", "status"},
		),

		StoreWriteDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "store_write_duration_seconds",
				Help:      "Duration of result store writes",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"backend"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("pathbench", "")
	}
	return defaultMetrics
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordBenchRun записывает итог бенчмарка
func (m *Metrics) RecordBenchRun(scenario string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.BenchRunsTotal.WithLabelValues(scenario, status(success)).Inc()
	if success {
		m.BenchRunDuration.WithLabelValues(scenario).Observe(duration.Seconds())
	}
}

// RecordShortestPath записывает одно повторение алгоритма
func (m *Metrics) RecordShortestPath(scenario string, duration time.Duration, reachable, extracted, decreased int) {
	if m == nil {
		return
	}
	m.ShortestPathDuration.WithLabelValues(scenario).Observe(duration.Seconds())
	m.ReachableVertices.WithLabelValues(scenario).Set(float64(reachable))
	m.HeapOperationsTotal.WithLabelValues("extract_min").Add(float64(extracted))
	m.HeapOperationsTotal.WithLabelValues("decrease_key").Add(float64(decreased))
}

// RecordGraphLoad записывает загрузку графа
func (m *Metrics) RecordGraphLoad(kind string, nodes, edges int, duration time.Duration) {
	if m == nil {
		return
	}
	m.GraphLoadDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.GraphNodesTotal.WithLabelValues(kind).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(kind).Observe(float64(edges))
}

// RecordStoreWrite записывает запись в хранилище результатов
func (m *Metrics) RecordStoreWrite(backend string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreWritesTotal.WithLabelValues(backend, status(success)).Inc()
	m.StoreWriteDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	if m == nil {
		return
	}
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer собирает HTTP сервер с /metrics и /health
func NewServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartMetricsServer запускает HTTP сервер для метрик и блокируется до отмены ctx
func StartMetricsServer(ctx context.Context, port int, path string) error {
	server := NewServer(port, path)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
