// Package report renders stored benchmark results as CSV, XLSX and PDF documents.
package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"pathbench/internal/results"
	"pathbench/pkg/apperror"
)

// Format формат отчёта
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Extension возвращает расширение файла
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat разбирает имя формата без учёта регистра
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidArgument, "unknown report format %q", s).
			WithField("format")
	}
}

// Data данные для генерации отчёта
type Data struct {
	Title       string
	Company     string
	GeneratedAt time.Time

	// Summaries в порядке вывода
	Summaries []results.Summary

	// Samples замеры по ключам. Может быть пустым, если хранилище их не отдаёт.
	Samples map[results.Key][]float64

	// Sizes порядок строк сводной таблицы
	Sizes []string
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
}

// Collect читает результаты из хранилища. order задаёт порядок сценариев
// в виде "Size/Case"; остальные сводки идут после, по алфавиту.
func Collect(ctx context.Context, st results.Store, order []string) (*Data, error) {
	sums, err := st.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	SortSummaries(sums, order)

	data := &Data{
		GeneratedAt: time.Now(),
		Summaries:   sums,
		Samples:     make(map[results.Key][]float64, len(sums)),
	}

	if l, ok := st.(results.SampleLister); ok {
		for _, s := range sums {
			samples, err := l.ListSamples(ctx, s.Key())
			if err != nil {
				if apperror.Is(err, apperror.CodeUnimplemented) {
					break
				}
				return nil, err
			}
			data.Samples[s.Key()] = samples
		}
	}
	return data, nil
}

// SortSummaries упорядочивает сводки по order, неизвестные в конце
func SortSummaries(sums []results.Summary, order []string) {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		if _, ok := rank[name]; !ok {
			rank[name] = i
		}
	}
	pos := func(s results.Summary) int {
		if r, ok := rank[s.Size+"/"+s.Case]; ok {
			return r
		}
		return len(order)
	}
	slices.SortStableFunc(sums, func(a, b results.Summary) int {
		if d := pos(a) - pos(b); d != 0 {
			return d
		}
		if c := strings.Compare(a.Size, b.Size); c != 0 {
			return c
		}
		return strings.Compare(a.Case, b.Case)
	})
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseGenerator) GetTitle(data *Data) string {
	if data.Title != "" {
		return data.Title
	}
	return "Shortest Path Benchmark"
}

// GetCompany возвращает подпись
func (b *BaseGenerator) GetCompany(data *Data) string {
	if data.Company != "" {
		return data.Company
	}
	return "pathbench"
}

// FormatSeconds форматирует секунды с заданной точностью
func (b *BaseGenerator) FormatSeconds(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// Cases возвращает случаи в порядке первого появления
func (b *BaseGenerator) Cases(data *Data) []string {
	var out []string
	for _, s := range data.Summaries {
		if !slices.Contains(out, s.Case) {
			out = append(out, s.Case)
		}
	}
	return out
}

// RowSizes возвращает строки сводной таблицы: data.Sizes, затем размеры без порядка
func (b *BaseGenerator) RowSizes(data *Data) []string {
	out := slices.Clone(data.Sizes)
	for _, s := range data.Summaries {
		if !slices.Contains(out, s.Size) {
			out = append(out, s.Size)
		}
	}
	return out
}

// Lookup ищет сводку по ключу
func (b *BaseGenerator) Lookup(data *Data, size, caseName string) (results.Summary, bool) {
	for _, s := range data.Summaries {
		if s.Size == size && s.Case == caseName {
			return s, true
		}
	}
	return results.Summary{}, false
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// CellByIndex возвращает адрес ячейки по индексам
func CellByIndex(colIndex, rowIndex int) string {
	return fmt.Sprintf("%s%d", ColName(colIndex), rowIndex)
}
