// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"pathbench/pkg/apperror"
)

// Config - главная структура конфигурации
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Bench    BenchConfig    `koanf:"bench"`
	Results  ResultsConfig  `koanf:"results"`
	Report   ReportConfig   `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file, discard
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // postgres
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	Schema          string        `koanf:"schema"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// RedisConfig - настройки Redis хранилища результатов
type RedisConfig struct {
	Host      string        `koanf:"host"`
	Port      int           `koanf:"port"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl"` // 0 - без срока
}

// Address возвращает адрес Redis
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BenchConfig - параметры бенчмарка
type BenchConfig struct {
	GraphsDir    string        `koanf:"graphs_dir"`
	Repetitions  int           `koanf:"repetitions"`
	Source       int           `koanf:"source"` // индекс вершины-источника
	Timeout      time.Duration `koanf:"timeout"`
	ClearScreen  bool          `koanf:"clear_screen"`
	VerifyRuns   bool          `koanf:"verify_runs"` // сверять расстояния повторов с первым
	CrossCheck   bool          `koanf:"cross_check"` // сверять с Bellman-Ford (медленно)
	CompleteSize SizeTriple    `koanf:"complete_size"`

	ExtraScenarios []ExtraScenario `koanf:"extra_scenarios"`
}

// SizeTriple - размеры для Small/Medium/Large
type SizeTriple struct {
	Small  int `koanf:"small"`
	Medium int `koanf:"medium"`
	Large  int `koanf:"large"`
}

// ExtraScenario - дополнительный сценарий из конфигурации
type ExtraScenario struct {
	Key       string  `koanf:"key"`
	Label     string  `koanf:"label"`
	Size      string  `koanf:"size"`
	Case      string  `koanf:"case"`
	Kind      string  `koanf:"kind"` // chain, complete, grid, nodelink, osm
	Vertices  int     `koanf:"vertices"`
	Rows      int     `koanf:"rows"`
	Cols      int     `koanf:"cols"`
	Weight    int64   `koanf:"weight"`
	Path      string  `koanf:"path"`
	SourceID  int64   `koanf:"source_id"`
	SourceLat float64 `koanf:"source_lat"`
	SourceLon float64 `koanf:"source_lon"`
}

// ResultsConfig - хранилище результатов
type ResultsConfig struct {
	Backend     string `koanf:"backend"` // csv, postgres, redis
	Dir         string `koanf:"dir"`
	SummaryFile string `koanf:"summary_file"`
	SamplesFile string `koanf:"samples_file"`
}

// ReportConfig конфигурация отчётов
type ReportConfig struct {
	Formats     []string  `koanf:"formats"` // csv, xlsx, pdf
	OutputDir   string    `koanf:"output_dir"`
	Title       string    `koanf:"title"`
	CompanyName string    `koanf:"company_name"`
	PDF         PDFConfig `koanf:"pdf"`
}

// PDFConfig конфигурация PDF генератора
type PDFConfig struct {
	PageSize          string  `koanf:"page_size"`        // A4, Letter, Legal
	Orientation       string  `koanf:"orientation"`      // portrait, landscape
	MarginTop         float64 `koanf:"margin_top"`       // mm
	MarginBottom      float64 `koanf:"margin_bottom"`    // mm
	MarginLeft        float64 `koanf:"margin_left"`      // mm
	MarginRight       float64 `koanf:"margin_right"`     // mm
	FontSize          float64 `koanf:"font_size"`        // pt
	HeaderFontSize    float64 `koanf:"header_font_size"` // pt
	EnablePageNumbers bool    `koanf:"enable_page_numbers"`
}

var (
	validBackends     = map[string]bool{"csv": true, "postgres": true, "redis": true, "none": true}
	validFormats      = map[string]bool{"csv": true, "xlsx": true, "pdf": true}
	validKinds        = map[string]bool{"chain": true, "complete": true, "grid": true, "nodelink": true, "osm": true}
	validLevels       = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validPageSizes    = map[string]bool{"A4": true, "Letter": true, "Legal": true, "A3": true}
	validOrientations = map[string]bool{"portrait": true, "landscape": true}
)

// Validate проверяет конфигурацию и собирает все ошибки в одну.
// Предупреждения не считаются ошибками.
func (c *Config) Validate() error {
	return c.Check().Err()
}

// Check возвращает все ошибки и предупреждения конфигурации
func (c *Config) Check() *apperror.ValidationErrors {
	v := apperror.NewValidationErrors()

	if c.App.Name == "" {
		v.AddErrorWithField(apperror.CodeInvalidConfig, "app.name is required", "app.name")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level), "log.level")
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port), "metrics.port")
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("tracing.sample_rate must be within [0, 1], got %g", c.Tracing.SampleRate), "tracing.sample_rate")
	} else if c.Tracing.Enabled && c.Tracing.SampleRate == 0 {
		v.AddWarning(apperror.CodeInvalidConfig,
			"tracing.enabled is set but tracing.sample_rate is 0, no spans will be exported")
	}

	// Bench
	if c.Bench.Repetitions <= 0 {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("bench.repetitions must be positive, got %d", c.Bench.Repetitions), "bench.repetitions")
	} else if c.Bench.Repetitions == 1 {
		v.AddWarning(apperror.CodeInvalidConfig,
			"bench.repetitions is 1, the standard deviation will always be 0")
	}
	if c.Bench.Source < 0 {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("bench.source must be non-negative, got %d", c.Bench.Source), "bench.source")
	}
	for _, size := range []int{c.Bench.CompleteSize.Small, c.Bench.CompleteSize.Medium, c.Bench.CompleteSize.Large} {
		if size <= 0 {
			v.AddErrorWithField(apperror.CodeInvalidConfig,
				"bench.complete_size entries must be positive", "bench.complete_size")
			break
		}
	}
	seen := make(map[string]bool, len(c.Bench.ExtraScenarios))
	for i, s := range c.Bench.ExtraScenarios {
		field := fmt.Sprintf("bench.extra_scenarios[%d]", i)
		if s.Key == "" {
			v.AddErrorWithField(apperror.CodeInvalidConfig, "extra scenario key is required", field)
		} else if seen[s.Key] {
			v.AddErrorWithField(apperror.CodeInvalidConfig,
				fmt.Sprintf("duplicate extra scenario key %q", s.Key), field)
		}
		seen[s.Key] = true
		if !validKinds[s.Kind] {
			v.AddErrorWithField(apperror.CodeInvalidConfig,
				fmt.Sprintf("extra scenario kind must be one of: chain, complete, grid, nodelink, osm, got %q", s.Kind), field)
		}
		if (s.Kind == "nodelink" || s.Kind == "osm") && s.Path == "" {
			v.AddErrorWithField(apperror.CodeInvalidConfig, "extra scenario path is required for file kinds", field)
		}
	}

	// Results
	if !validBackends[c.Results.Backend] {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("results.backend must be one of: csv, postgres, redis, none, got %s", c.Results.Backend), "results.backend")
	}

	// Report
	for _, f := range c.Report.Formats {
		if !validFormats[f] {
			v.AddErrorWithField(apperror.CodeInvalidConfig,
				fmt.Sprintf("report.formats entries must be one of: csv, xlsx, pdf, got %s", f), "report.formats")
		}
	}
	if c.Report.PDF.PageSize != "" && !validPageSizes[c.Report.PDF.PageSize] {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("report.pdf.page_size must be one of: A4, Letter, Legal, A3, got %s", c.Report.PDF.PageSize), "report.pdf.page_size")
	}
	if c.Report.PDF.Orientation != "" && !validOrientations[c.Report.PDF.Orientation] {
		v.AddErrorWithField(apperror.CodeInvalidConfig,
			fmt.Sprintf("report.pdf.orientation must be one of: portrait, landscape, got %s", c.Report.PDF.Orientation), "report.pdf.orientation")
	}

	return v
}
