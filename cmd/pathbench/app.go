package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"pathbench/internal/bench"
	"pathbench/internal/menu"
	"pathbench/internal/report"
	"pathbench/internal/results"
	"pathbench/internal/scenario"
	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/logger"
	"pathbench/pkg/metrics"
	"pathbench/pkg/telemetry"
)

type env struct {
	args     []string
	stdin    io.Reader
	stdout   io.Writer
	registry prometheus.Registerer
}

type flags struct {
	configPath  string
	scenario    string
	all         bool
	graph       string
	source      int
	repetitions int
	report      string
}

func parseFlags(args []string, out io.Writer) (*flags, error) {
	fs := flag.NewFlagSet("pathbench", flag.ContinueOnError)
	fs.SetOutput(out)

	f := &flags{}
	fs.StringVar(&f.configPath, "config", "", "path to config.yaml")
	fs.StringVar(&f.scenario, "scenario", "", "run one scenario by menu key and exit")
	fs.BoolVar(&f.all, "all", false, "run every scenario and exit")
	fs.StringVar(&f.graph, "graph", "", "run an ad-hoc node-link (.json) or OSM (.pbf, .osm) file")
	fs.IntVar(&f.source, "source", -1, "source vertex index (overrides bench.source)")
	fs.IntVar(&f.repetitions, "repetitions", 0, "repetitions per benchmark (overrides bench.repetitions)")
	fs.StringVar(&f.report, "report", "", "comma-separated report formats: csv, xlsx, pdf")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "unexpected arguments: %v", fs.Args())
	}

	modes := 0
	for _, set := range []bool{f.scenario != "", f.all, f.graph != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "-scenario, -all and -graph are mutually exclusive")
	}
	return f, nil
}

func (f *flags) overrides() map[string]any {
	o := make(map[string]any)
	if f.source >= 0 {
		o["bench.source"] = f.source
	}
	if f.repetitions > 0 {
		o["bench.repetitions"] = f.repetitions
	}
	if f.report != "" {
		var formats []string
		for _, s := range strings.Split(f.report, ",") {
			if s = strings.TrimSpace(s); s != "" {
				formats = append(formats, s)
			}
		}
		o["report.formats"] = formats
	}
	return o
}

// adHocScenario описывает файл из -graph
func adHocScenario(path string, source int) (scenario.Scenario, error) {
	kind := scenario.KindNodeLink
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
	case ".pbf", ".osm", ".xml":
		kind = scenario.KindOSM
	default:
		return scenario.Scenario{}, apperror.Newf(apperror.CodeInvalidArgument,
			"cannot tell the format of %s", path).WithField("graph")
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := scenario.Scenario{
		Key:    "graph",
		Label:  name,
		Size:   name,
		Case:   "Custom",
		Kind:   kind,
		Path:   path,
		Source: source,
	}
	return s, s.Validate()
}

func run(ctx context.Context, e env) error {
	f, err := parseFlags(e.args, e.stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "invalid flags")
	}

	// Конфигурация
	opts := []config.LoaderOption{config.WithOverrides(f.overrides())}
	if f.configPath != "" {
		opts = append(opts, config.WithConfigPaths(f.configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	// Логгер
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	if checks := cfg.Check(); checks.HasWarnings() {
		for _, msg := range checks.WarningMessages() {
			logger.Log.Warn("Config warning", "warning", msg)
		}
	}

	// Телеметрия
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     true,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Log.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// Метрики
	m := metrics.NewMetrics(e.registry, cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if err := e.registry.Register(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)); err != nil {
		logger.Log.Warn("Failed to register runtime collector", "error", err)
	}
	if cfg.Metrics.Enabled {
		srvCtx, stopServer := context.WithCancel(ctx)
		defer stopServer()
		go func() {
			if err := metrics.StartMetricsServer(srvCtx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Log.Info("Metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	// Хранилище результатов
	store, err := results.Open(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("Failed to close results store", "error", err)
		}
	}()

	catalog, err := scenario.NewCatalog(&cfg.Bench)
	if err != nil {
		return err
	}

	session := menu.New(menu.Options{
		In:          e.stdin,
		Out:         e.stdout,
		Catalog:     catalog,
		Builder:     scenario.NewBuilder(m),
		Runner:      bench.NewRunner(bench.OptionsFromConfig(&cfg.Bench), m),
		Store:       store,
		ClearScreen: cfg.Bench.ClearScreen && f.scenario == "" && !f.all && f.graph == "",
	})

	logger.Info("Starting pathbench",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"results_backend", store.Backend(),
		"repetitions", cfg.Bench.Repetitions,
	)

	var runErr error
	switch {
	case f.scenario != "":
		var sc scenario.Scenario
		if sc, runErr = catalog.Get(f.scenario); runErr == nil {
			_, runErr = session.Execute(ctx, sc)
		}
	case f.all:
		runErr = session.RunAll(ctx)
	case f.graph != "":
		var sc scenario.Scenario
		if sc, runErr = adHocScenario(f.graph, cfg.Bench.Source); runErr == nil {
			_, runErr = session.Execute(ctx, sc)
		}
	default:
		runErr = session.Loop(ctx)
	}

	if session.Completed > 0 && len(cfg.Report.Formats) > 0 && ctx.Err() == nil {
		if err := writeReports(ctx, cfg, store, catalog); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}

func writeReports(ctx context.Context, cfg *config.Config, store results.Store, catalog *scenario.Catalog) error {
	w, err := report.NewWriter(cfg.Report)
	if err != nil {
		return err
	}

	order := make([]string, 0, len(catalog.All()))
	for _, sc := range catalog.All() {
		order = append(order, sc.Name())
	}
	data, err := report.Collect(ctx, store, order)
	if err != nil {
		return err
	}
	data.Sizes = catalog.Sizes()

	_, err = w.Write(ctx, data)
	return err
}
