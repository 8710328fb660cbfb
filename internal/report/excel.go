package report

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"

	"pathbench/pkg/apperror"
)

const (
	sheetSummary = "Summary"
	sheetPivot   = "Mean by Size"
	sheetSamples = "Samples"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatXLSX
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to create style")
	}
	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2, CustomNumFmt: strPtr("0.000000")})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to create style")
	}

	steps := []func(*excelize.File, *Data, int, int) error{
		g.writeSummarySheet,
		g.writePivotSheet,
	}
	if len(data.Samples) > 0 {
		steps = append(steps, g.writeSamplesSheet)
	}
	for _, step := range steps {
		if err := step(f, data, headerStyle, numStyle); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to fill workbook")
		}
	}

	// Удаляем дефолтный лист
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to delete default sheet")
	}
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeReportError, "failed to write workbook")
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }

// sheetWriter запоминает первую ошибку
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, CellByIndex(col, row), v)
}

func (w *sheetWriter) style(fromCol, toCol, row, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, CellByIndex(fromCol, row), CellByIndex(toCol, row), style)
}

func (w *sheetWriter) header(row, style int, cols ...string) {
	for i, c := range cols {
		w.set(i, row, c)
	}
	w.style(0, len(cols)-1, row, style)
}

func newSheet(f *excelize.File, name string) (*sheetWriter, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, err
	}
	return &sheetWriter{f: f, sheet: name}, nil
}

func (g *ExcelGenerator) writeSummarySheet(f *excelize.File, data *Data, headerStyle, numStyle int) error {
	w, err := newSheet(f, sheetSummary)
	if err != nil {
		return err
	}

	w.set(0, 1, g.GetTitle(data))
	w.set(0, 2, "Generated")
	w.set(1, 2, g.FormatTimestamp(data.GeneratedAt))

	row := 4
	w.header(row, headerStyle,
		"Size", "Case", "Mean (s)", "Max (s)", "Min (s)", "Total (s)", "StdDev (s)",
		"Repetitions", "Vertices", "Edges", "Run ID")
	row++

	first := row
	for _, s := range data.Summaries {
		vals := []any{s.Size, s.Case, s.Mean, s.Max, s.Min, s.Total, s.StdDev,
			s.Repetitions, s.Vertices, s.Edges, s.RunID}
		for i, v := range vals {
			w.set(i, row, v)
		}
		row++
	}
	if row > first && w.err == nil {
		w.err = f.SetCellStyle(w.sheet, CellByIndex(2, first), CellByIndex(6, row-1), numStyle)
	}
	if w.err == nil {
		w.err = f.SetColWidth(w.sheet, "A", "K", 14)
	}
	return w.err
}

// writePivotSheet средние времена: строки размеры, столбцы случаи
func (g *ExcelGenerator) writePivotSheet(f *excelize.File, data *Data, headerStyle, numStyle int) error {
	w, err := newSheet(f, sheetPivot)
	if err != nil {
		return err
	}

	cases := g.Cases(data)
	w.header(1, headerStyle, append([]string{"Size"}, cases...)...)

	row := 2
	for _, size := range g.RowSizes(data) {
		w.set(0, row, size)
		for i, c := range cases {
			if s, ok := g.Lookup(data, size, c); ok {
				w.set(i+1, row, s.Mean)
			}
		}
		row++
	}
	if len(cases) > 0 && row > 2 && w.err == nil {
		w.err = f.SetCellStyle(w.sheet, CellByIndex(1, 2), CellByIndex(len(cases), row-1), numStyle)
	}
	return w.err
}

func (g *ExcelGenerator) writeSamplesSheet(f *excelize.File, data *Data, headerStyle, _ int) error {
	w, err := newSheet(f, sheetSamples)
	if err != nil {
		return err
	}

	w.header(1, headerStyle, "Size", "Case", "Run", "Time (s)")
	row := 2
	for _, s := range data.Summaries {
		for i, v := range data.Samples[s.Key()] {
			w.set(0, row, s.Size)
			w.set(1, row, s.Case)
			w.set(2, row, i+1)
			w.set(3, row, v)
			row++
		}
	}
	return w.err
}
