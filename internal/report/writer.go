package report

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/logger"
	"pathbench/pkg/telemetry"
)

const baseName = "pathbench_report"

// Writer пишет отчёты в выбранных форматах в каталог
type Writer struct {
	dir        string
	title      string
	company    string
	generators []Generator
}

// NewWriter создаёт Writer из конфигурации. Неизвестные форматы дают ошибку.
func NewWriter(cfg config.ReportConfig) (*Writer, error) {
	w := &Writer{dir: cfg.OutputDir, title: cfg.Title, company: cfg.CompanyName}
	if w.dir == "" {
		w.dir = "."
	}

	formats := cfg.Formats
	if len(formats) == 0 {
		formats = []string{string(FormatCSV)}
	}
	for _, name := range formats {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		w.generators = append(w.generators, NewGenerator(f, cfg.PDF))
	}
	return w, nil
}

// NewGenerator возвращает генератор формата
func NewGenerator(f Format, pdf config.PDFConfig) Generator {
	switch f {
	case FormatXLSX:
		return NewExcelGenerator()
	case FormatPDF:
		return NewPDFGenerator(pdf)
	default:
		return NewCSVGenerator()
	}
}

// Write генерирует все форматы и возвращает пути созданных файлов
func (w *Writer) Write(ctx context.Context, data *Data) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "report.write")
	defer span.End()

	if data.Title == "" {
		data.Title = w.title
	}
	if data.Company == "" {
		data.Company = w.company
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to create report directory").
			WithDetails("dir", w.dir)
	}

	paths := make([]string, 0, len(w.generators))
	for _, g := range w.generators {
		start := time.Now()
		b, err := g.Generate(ctx, data)
		if err != nil {
			telemetry.SetError(ctx, err)
			return paths, err
		}

		path := filepath.Join(w.dir, baseName+g.Format().Extension())
		if err := os.WriteFile(path, b, 0o644); err != nil {
			err := apperror.Wrap(err, apperror.CodeReportError, "failed to write report").
				WithDetails("path", path)
			telemetry.SetError(ctx, err)
			return paths, err
		}

		telemetry.AddEvent(ctx, "report.generated",
			attribute.String("report.format", string(g.Format())),
			attribute.Int("report.bytes", len(b)),
		)
		logger.Info("Report written",
			"format", g.Format(),
			"path", path,
			"bytes", len(b),
			"duration", time.Since(start),
		)
		paths = append(paths, path)
	}
	return paths, nil
}
