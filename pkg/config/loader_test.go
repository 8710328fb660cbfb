package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pathbench/pkg/apperror"
)

// noFile keeps the loader from picking up a config.yaml in the working dir.
func noFile(t *testing.T) LoaderOption {
	return WithConfigPaths(filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoader_LoadDefaults(t *testing.T) {
	t.Setenv(configEnvVar, "")

	cfg, err := NewLoader(noFile(t)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "pathbench" {
		t.Errorf("expected app name 'pathbench', got %s", cfg.App.Name)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Bench.Repetitions != 30 {
		t.Errorf("expected 30 repetitions, got %d", cfg.Bench.Repetitions)
	}
	if cfg.Bench.Source != 0 {
		t.Errorf("expected source 0, got %d", cfg.Bench.Source)
	}
	want := SizeTriple{Small: 500, Medium: 1000, Large: 5000}
	if cfg.Bench.CompleteSize != want {
		t.Errorf("expected complete sizes %+v, got %+v", want, cfg.Bench.CompleteSize)
	}
	if cfg.Bench.Timeout != 30*time.Minute {
		t.Errorf("expected timeout 30m, got %v", cfg.Bench.Timeout)
	}
	if cfg.Results.Backend != "csv" {
		t.Errorf("expected csv backend, got %s", cfg.Results.Backend)
	}
	if cfg.Database.Schema != "public" {
		t.Errorf("expected schema public, got %s", cfg.Database.Schema)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	t.Setenv(configEnvVar, "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-bench
  version: 2.0.0
  environment: staging
log:
  level: debug
bench:
  repetitions: 5
  graphs_dir: /data/graphs
  extra_scenarios:
    - key: c1
      label: Chain 1000
      size: Chain
      case: Best
      kind: chain
      vertices: 1000
      weight: 1
    - key: osm
      label: Monaco
      kind: osm
      path: /data/monaco.osm.pbf
      source_lat: 43.73
      source_lon: 7.42
results:
  backend: redis
report:
  formats: [csv, xlsx]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loader.FileUsed == "" {
		t.Error("expected FileUsed to be set")
	}
	if cfg.App.Name != "custom-bench" {
		t.Errorf("expected app name 'custom-bench', got %s", cfg.App.Name)
	}
	if cfg.App.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %s", cfg.App.Version)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
	if cfg.Bench.Repetitions != 5 {
		t.Errorf("expected 5 repetitions, got %d", cfg.Bench.Repetitions)
	}
	if cfg.Bench.GraphsDir != "/data/graphs" {
		t.Errorf("expected graphs dir /data/graphs, got %s", cfg.Bench.GraphsDir)
	}
	if len(cfg.Bench.ExtraScenarios) != 2 {
		t.Fatalf("expected 2 extra scenarios, got %d", len(cfg.Bench.ExtraScenarios))
	}
	chain := cfg.Bench.ExtraScenarios[0]
	if chain.Kind != "chain" || chain.Vertices != 1000 || chain.Weight != 1 {
		t.Errorf("unexpected chain scenario: %+v", chain)
	}
	osm := cfg.Bench.ExtraScenarios[1]
	if osm.SourceLat != 43.73 || osm.SourceLon != 7.42 {
		t.Errorf("unexpected osm coordinates: %+v", osm)
	}
	if cfg.Results.Backend != "redis" {
		t.Errorf("expected redis backend, got %s", cfg.Results.Backend)
	}
	if len(cfg.Report.Formats) != 2 || cfg.Report.Formats[1] != "xlsx" {
		t.Errorf("unexpected report formats: %v", cfg.Report.Formats)
	}
	// untouched keys keep defaults
	if cfg.Bench.CompleteSize.Large != 5000 {
		t.Errorf("expected default large size, got %d", cfg.Bench.CompleteSize.Large)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv(configEnvVar, "")
	t.Setenv("PATHBENCH_APP_NAME", "env-bench")
	t.Setenv("PATHBENCH_BENCH_REPETITIONS", "7")
	t.Setenv("PATHBENCH_BENCH_CLEAR_SCREEN", "false")
	t.Setenv("PATHBENCH_DATABASE_SSL_MODE", "require")
	t.Setenv("PATHBENCH_REPORT_FORMATS", "pdf, csv")
	t.Setenv("PATHBENCH_RESULTS_BACKEND", "postgres")

	cfg, err := NewLoader(noFile(t)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-bench" {
		t.Errorf("expected app name 'env-bench', got %s", cfg.App.Name)
	}
	if cfg.Bench.Repetitions != 7 {
		t.Errorf("expected 7 repetitions, got %d", cfg.Bench.Repetitions)
	}
	if cfg.Bench.ClearScreen {
		t.Error("expected clear_screen false")
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("expected ssl_mode 'require', got %s", cfg.Database.SSLMode)
	}
	if len(cfg.Report.Formats) != 2 || cfg.Report.Formats[0] != "pdf" || cfg.Report.Formats[1] != "csv" {
		t.Errorf("unexpected formats: %v", cfg.Report.Formats)
	}
	if cfg.Results.Backend != "postgres" {
		t.Errorf("expected postgres backend, got %s", cfg.Results.Backend)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	t.Setenv(configEnvVar, "")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bench:\n  repetitions: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("PATHBENCH_BENCH_REPETITIONS", "9")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Bench.Repetitions != 9 {
		t.Errorf("expected env to win with 9, got %d", cfg.Bench.Repetitions)
	}
}

func TestLoader_OverridesWin(t *testing.T) {
	t.Setenv(configEnvVar, "")
	t.Setenv("PATHBENCH_BENCH_REPETITIONS", "9")

	cfg, err := NewLoader(noFile(t), WithOverrides(map[string]any{
		"bench.repetitions": 2,
		"bench.source":      4,
	})).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Bench.Repetitions != 2 {
		t.Errorf("expected override 2, got %d", cfg.Bench.Repetitions)
	}
	if cfg.Bench.Source != 4 {
		t.Errorf("expected source 4, got %d", cfg.Bench.Source)
	}
}

func TestLoader_ConfigPathEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(configPath, []byte("app:\n  name: from-config-path\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(configEnvVar, configPath)

	loader := NewLoader(noFile(t))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.App.Name != "from-config-path" {
		t.Errorf("expected app name from CONFIG_PATH, got %s", cfg.App.Name)
	}
	if loader.FileUsed != configPath {
		t.Errorf("expected FileUsed %s, got %s", configPath, loader.FileUsed)
	}
}

func TestLoader_ConfigPathEnvMissing(t *testing.T) {
	t.Setenv(configEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := NewLoader(noFile(t)).Load()
	if err == nil {
		t.Fatal("expected error for missing CONFIG_PATH file")
	}
	if !apperror.Is(err, apperror.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestLoader_InvalidYAML(t *testing.T) {
	t.Setenv(configEnvVar, "")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bench: [unterminated\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !apperror.Is(err, apperror.CodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoader_ValidationFailure(t *testing.T) {
	t.Setenv(configEnvVar, "")
	t.Setenv("PATHBENCH_BENCH_REPETITIONS", "0")

	_, err := NewLoader(noFile(t)).Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperror.ExitCode(err) != apperror.ExitUsage {
		t.Errorf("expected usage exit code, got %d", apperror.ExitCode(err))
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
