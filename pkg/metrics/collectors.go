package metrics

import (
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// memStat одна метрика, снимаемая с runtime.MemStats
type memStat struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(*runtime.MemStats) float64
}

// RuntimeCollector отдаёт состояние кучи и GC на момент сбора.
// Во время прогона видно, сколько памяти держат граф и буферы алгоритма.
type RuntimeCollector struct {
	goroutines *prometheus.Desc
	gcPause    *prometheus.Desc
	stats      []memStat
}

// NewRuntimeCollector создаёт коллектор; имена метрик получают префикс runtime_
func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "runtime_"+name), help, nil, nil)
	}
	return &RuntimeCollector{
		goroutines: desc("goroutines", "Number of goroutines"),
		gcPause:    desc("gc_last_pause_seconds", "Duration of the most recent GC pause"),
		stats: []memStat{
			{desc("heap_alloc_bytes", "Bytes of allocated heap objects"), prometheus.GaugeValue,
				func(m *runtime.MemStats) float64 { return float64(m.HeapAlloc) }},
			{desc("heap_inuse_bytes", "Bytes in in-use heap spans"), prometheus.GaugeValue,
				func(m *runtime.MemStats) float64 { return float64(m.HeapInuse) }},
			{desc("heap_objects", "Number of allocated heap objects"), prometheus.GaugeValue,
				func(m *runtime.MemStats) float64 { return float64(m.HeapObjects) }},
			{desc("alloc_bytes_total", "Cumulative bytes allocated for heap objects"), prometheus.CounterValue,
				func(m *runtime.MemStats) float64 { return float64(m.TotalAlloc) }},
			{desc("gc_cycles_total", "Completed GC cycles"), prometheus.CounterValue,
				func(m *runtime.MemStats) float64 { return float64(m.NumGC) }},
		},
	}
}

// Describe implements prometheus.Collector
func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.gcPause
	for _, st := range c.stats {
		ch <- st.desc
	}
}

// Collect implements prometheus.Collector. Пауза GC отдаётся только после первого цикла.
func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	for _, st := range c.stats {
		ch <- prometheus.MustNewConstMetric(st.desc, st.valueType, st.value(&ms))
	}
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		ch <- prometheus.MustNewConstMetric(c.gcPause, prometheus.GaugeValue, float64(last)/1e9)
	}
}

// RunTracker отслеживает выполняющиеся бенчмарки по сценариям
type RunTracker struct {
	mu       sync.Mutex
	active   map[string]int
	inFlight prometheus.Gauge
}

// NewRunTracker создаёт новый трекер
func NewRunTracker(inFlight prometheus.Gauge) *RunTracker {
	return &RunTracker{
		active:   make(map[string]int),
		inFlight: inFlight,
	}
}

// Start отмечает начало бенчмарка
func (t *RunTracker) Start(scenario string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[scenario]++
	t.inFlight.Inc()
}

// End отмечает завершение бенчмарка
func (t *RunTracker) End(scenario string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active[scenario] > 0 {
		t.active[scenario]--
		t.inFlight.Dec()
	}
}

// Active возвращает число выполняющихся бенчмарков сценария
func (t *RunTracker) Active(scenario string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[scenario]
}
