// Package bench times repeated shortest-path runs over one graph and source
// and summarises them.
package bench

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"pathbench/internal/scenario"
	"pathbench/pkg/algorithms"
	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/graph"
	"pathbench/pkg/logger"
	"pathbench/pkg/metrics"
	"pathbench/pkg/telemetry"
)

// Options controls a Runner.
type Options struct {
	Repetitions int
	Timeout     time.Duration

	// VerifyRuns compares every repetition's distances with the first one.
	VerifyRuns bool

	// CrossCheck compares the first repetition with Bellman-Ford. It costs
	// O(V*E) and is meant for small graphs.
	CrossCheck bool
}

// OptionsFromConfig maps the bench section of the configuration.
func OptionsFromConfig(cfg *config.BenchConfig) Options {
	return Options{
		Repetitions: cfg.Repetitions,
		Timeout:     cfg.Timeout,
		VerifyRuns:  cfg.VerifyRuns,
		CrossCheck:  cfg.CrossCheck,
	}
}

// Input is one benchmark request.
type Input struct {
	Scenario scenario.Scenario
	Graph    *graph.Graph
	Source   int

	// OnRepetition, when set, is called after each timed repetition with its
	// 1-based index.
	OnRepetition func(rep int, d time.Duration)
}

// InputFromBuilt wraps a materialised scenario.
func InputFromBuilt(b *scenario.Built) Input {
	return Input{Scenario: b.Scenario, Graph: b.Graph, Source: b.Source}
}

// Report is the outcome of one benchmark.
type Report struct {
	RunID     string
	Scenario  scenario.Scenario
	Source    int
	Graph     graph.Statistics
	StartedAt time.Time
	Elapsed   time.Duration

	// Samples holds per-repetition wall time in seconds, in run order.
	Samples []float64
	Stats   Stats

	Reachable    int
	Relaxations  int
	EdgesScanned int
}

// Runner executes benchmarks. It holds no per-run state and may be shared.
type Runner struct {
	opts    Options
	metrics *metrics.Metrics
	tracker *metrics.RunTracker
}

// NewRunner creates a runner. m may be nil.
func NewRunner(opts Options, m *metrics.Metrics) *Runner {
	r := &Runner{opts: opts, metrics: m}
	if m != nil {
		r.tracker = metrics.NewRunTracker(m.BenchRunsInFlight)
	}
	return r
}

// Run calls the shortest-path search Repetitions times on the same graph and
// source, each a cold computation, and times every call with the monotonic
// clock.
func (r *Runner) Run(ctx context.Context, in Input) (*Report, error) {
	if in.Graph == nil {
		return nil, apperror.New(apperror.CodeNilInput, "graph is nil")
	}
	if r.opts.Repetitions <= 0 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"repetitions must be positive, got %d", r.opts.Repetitions).
			WithField("repetitions")
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	name := in.Scenario.Name()
	report := &Report{
		RunID:     uuid.NewString(),
		Scenario:  in.Scenario,
		Source:    in.Source,
		Graph:     in.Graph.Stats(),
		StartedAt: time.Now(),
		Samples:   make([]float64, 0, r.opts.Repetitions),
	}

	ctx, span := telemetry.StartSpan(ctx, "bench.run",
		telemetry.WithAttributes(telemetry.ScenarioAttributes(
			report.RunID, in.Scenario.Size, in.Scenario.Case, r.opts.Repetitions)...))
	defer span.End()
	telemetry.SetAttributes(ctx, telemetry.GraphAttributes(
		string(in.Scenario.Kind), report.Graph.VertexCount, report.Graph.EdgeCount, in.Source)...)

	ctx = logger.ContextWith(ctx, "run_id", report.RunID, "scenario", name)
	log := logger.WithContext(ctx)

	if r.tracker != nil {
		r.tracker.Start(name)
		defer r.tracker.End(name)
	}

	log.Info("Benchmark started",
		"vertices", report.Graph.VertexCount,
		"edges", report.Graph.EdgeCount,
		"source", in.Source,
		"repetitions", r.opts.Repetitions,
	)

	err := r.repeat(ctx, in, report)
	report.Elapsed = time.Since(report.StartedAt)
	r.metrics.RecordBenchRun(name, err == nil, report.Elapsed)
	if err != nil {
		telemetry.SetError(ctx, err)
		log.Error("Benchmark failed", "completed", len(report.Samples), "error", err)
		return nil, err
	}

	report.Stats = ComputeStats(report.Samples)

	log.Info("Benchmark finished",
		"mean_s", report.Stats.Mean,
		"stddev_s", report.Stats.StdDev,
		"min_s", report.Stats.Min,
		"max_s", report.Stats.Max,
		"total_s", report.Stats.Total,
		"reachable", report.Reachable,
	)

	return report, nil
}

func (r *Runner) repeat(ctx context.Context, in Input, report *Report) error {
	name := in.Scenario.Name()
	log := logger.WithContext(ctx)

	var first []int64
	for rep := 1; rep <= r.opts.Repetitions; rep++ {
		start := time.Now()
		res, err := algorithms.DijkstraWithContext(ctx, in.Graph, in.Source)
		elapsed := time.Since(start)
		if err != nil {
			return err
		}

		seconds := elapsed.Seconds()
		report.Samples = append(report.Samples, seconds)
		reachable := algorithms.CountReachable(res.Distances)

		r.metrics.RecordShortestPath(name, elapsed, reachable, res.Settled, res.Relaxations)
		telemetry.AddEvent(ctx, "repetition",
			telemetry.RepetitionAttributes(rep, seconds, reachable, res.Relaxations)...)
		log.Debug("Repetition finished", "rep", rep, "seconds", seconds)

		if in.OnRepetition != nil {
			in.OnRepetition(rep, elapsed)
		}

		if first == nil {
			first = res.Distances
			report.Reachable = reachable
			report.Relaxations = res.Relaxations
			report.EdgesScanned = res.EdgesScanned

			if r.opts.CrossCheck {
				if err := crossCheck(ctx, in, first); err != nil {
					return err
				}
			}
			continue
		}

		if r.opts.VerifyRuns && !slices.Equal(first, res.Distances) {
			return apperror.New(apperror.CodeInternal, "repeated run produced different distances").
				WithDetails("repetition", rep)
		}
	}
	return nil
}

// crossCheck verifies distances against Bellman-Ford. It runs outside the
// timed section.
func crossCheck(ctx context.Context, in Input, dist []int64) error {
	ctx, span := telemetry.StartSpan(ctx, "bench.cross_check")
	defer span.End()

	want, err := algorithms.BellmanFordWithContext(ctx, in.Graph, in.Source)
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}
	for v := range want {
		if want[v] != dist[v] {
			err := apperror.Newf(apperror.CodeInternal,
				"distance to %d is %d, Bellman-Ford gives %d", v, dist[v], want[v]).
				WithDetails("vertex", v)
			telemetry.SetError(ctx, err)
			return err
		}
	}
	logger.WithContext(ctx).Debug("Cross-check passed")
	return nil
}
