package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"pathbench/pkg/apperror"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV отчёт: сводка, затем отдельные замеры
func (g *CSVGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"# " + g.GetTitle(data)})
	cw.Write([]string{"# Generated", g.FormatTimestamp(data.GeneratedAt)})
	cw.Write([]string{})

	g.writeSummaries(cw, data)

	if len(data.Samples) > 0 {
		cw.Write([]string{})
		g.writeSamples(cw, data)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "csv write error")
	}

	return buf.Bytes(), nil
}

func (g *CSVGenerator) writeSummaries(cw *csvWriter, data *Data) {
	cw.Write([]string{
		"Size", "Case", "Mean (s)", "Max (s)", "Min (s)", "Total (s)", "StdDev (s)",
		"Repetitions", "Vertices", "Edges",
	})
	for _, s := range data.Summaries {
		cw.Write([]string{
			s.Size,
			s.Case,
			g.FormatSeconds(s.Mean, 6),
			g.FormatSeconds(s.Max, 6),
			g.FormatSeconds(s.Min, 6),
			g.FormatSeconds(s.Total, 6),
			g.FormatSeconds(s.StdDev, 6),
			strconv.Itoa(s.Repetitions),
			strconv.Itoa(s.Vertices),
			strconv.Itoa(s.Edges),
		})
	}
}

func (g *CSVGenerator) writeSamples(cw *csvWriter, data *Data) {
	cw.Write([]string{"Size", "Case", "Run", "Time (s)"})
	for _, s := range data.Summaries {
		for i, v := range data.Samples[s.Key()] {
			cw.Write([]string{s.Size, s.Case, strconv.Itoa(i + 1), g.FormatSeconds(v, 8)})
		}
	}
}
