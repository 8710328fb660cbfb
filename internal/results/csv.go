package results

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"pathbench/pkg/apperror"
	"pathbench/pkg/logger"
)

var (
	summaryHeader = []string{"Size", "Case", "Mean (s)", "Max (s)", "Min (s)", "Total (s)", "StdDev (s)"}
	samplesHeader = []string{"Size", "Case", "Run", "Time (s)"}
)

const (
	summaryPrecision = 6
	samplePrecision  = 8
)

// CSVStore хранит результаты в двух CSV файлах: сводки и отдельные замеры.
// Файлы перезаписываются целиком через временный файл и rename.
type CSVStore struct {
	mu          sync.Mutex
	summaryPath string
	samplesPath string
}

// NewCSVStore создаёт хранилище; каталог dir создаётся при необходимости
func NewCSVStore(dir, summaryFile, samplesFile string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to create results directory").
			WithDetails("dir", dir)
	}
	return &CSVStore{
		summaryPath: filepath.Join(dir, summaryFile),
		samplesPath: filepath.Join(dir, samplesFile),
	}, nil
}

// SummaryPath возвращает путь файла сводок
func (s *CSVStore) SummaryPath() string { return s.summaryPath }

// SamplesPath возвращает путь файла замеров
func (s *CSVStore) SamplesPath() string { return s.samplesPath }

// SaveSummary обновляет строку (size, case) или добавляет её в конец.
// Повторные строки того же ключа удаляются, заголовок всегда первый.
func (s *CSVStore) SaveSummary(_ context.Context, sum Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRows(s.summaryPath)
	if err != nil {
		return err
	}

	row := formatSummary(sum)
	target := sum.Key()
	seen := make(map[Key]bool, len(rows))
	out := make([][]string, 0, len(rows)+2)
	out = append(out, summaryHeader)

	for _, r := range rows {
		if len(r) < 2 {
			continue
		}
		k := Key{Size: r[0], Case: r[1]}
		if seen[k] {
			continue
		}
		seen[k] = true
		if k == target {
			out = append(out, row)
		} else {
			out = append(out, r)
		}
	}
	if !seen[target] {
		out = append(out, row)
	}

	return writeRows(s.summaryPath, out)
}

// SaveSamples заменяет все замеры ключа новыми
func (s *CSVStore) SaveSamples(_ context.Context, key Key, samples []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRows(s.samplesPath)
	if err != nil {
		return err
	}

	out := make([][]string, 0, len(rows)+len(samples)+1)
	out = append(out, samplesHeader)
	for _, r := range rows {
		if len(r) < 2 || (r[0] == key.Size && r[1] == key.Case) {
			continue
		}
		out = append(out, r)
	}
	for i, v := range samples {
		out = append(out, []string{
			key.Size,
			key.Case,
			strconv.Itoa(i + 1),
			strconv.FormatFloat(v, 'f', samplePrecision, 64),
		})
	}

	return writeRows(s.samplesPath, out)
}

// ListSummaries читает файл сводок. Строки, которые не удалось разобрать,
// пропускаются с предупреждением.
func (s *CSVStore) ListSummaries(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRows(s.summaryPath)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(rows))
	for i, r := range rows {
		sum, err := parseSummary(r)
		if err != nil {
			logger.Warn("Skipping malformed summary row", "path", s.summaryPath, "row", i+1, "error", err)
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// ListSamples возвращает замеры ключа в порядке номеров запусков
func (s *CSVStore) ListSamples(_ context.Context, key Key) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRows(s.samplesPath)
	if err != nil {
		return nil, err
	}

	var out []float64
	for _, r := range rows {
		if len(r) < 4 || r[0] != key.Size || r[1] != key.Case {
			continue
		}
		v, err := strconv.ParseFloat(r[3], 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "malformed sample row").
				WithDetails("path", s.samplesPath)
		}
		out = append(out, v)
	}
	return out, nil
}

// Close ничего не делает: файлы не держатся открытыми
func (s *CSVStore) Close() error { return nil }

func formatSummary(s Summary) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', summaryPrecision, 64) }
	return []string{s.Size, s.Case, f(s.Mean), f(s.Max), f(s.Min), f(s.Total), f(s.StdDev)}
}

func parseSummary(r []string) (Summary, error) {
	if len(r) < len(summaryHeader) {
		return Summary{}, errors.New("too few columns")
	}
	vals := make([]float64, 5)
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(r[2+i]), 64)
		if err != nil {
			return Summary{}, err
		}
		vals[i] = v
	}
	return Summary{
		Size:   r[0],
		Case:   r[1],
		Mean:   vals[0],
		Max:    vals[1],
		Min:    vals[2],
		Total:  vals[3],
		StdDev: vals[4],
	}, nil
}

// readRows читает все строки файла без заголовка. Отсутствующий файл пуст.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to open results file").
			WithDetails("path", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to parse results file").
				WithDetails("path", path)
		}
		if isHeader(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	return len(rec) >= 2 && rec[0] == "Size" && rec[1] == "Case"
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

// writeRows пишет строки во временный файл рядом с path и переименовывает его
func writeRows(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to create temp file").
			WithDetails("path", path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // после rename файла уже нет

	cw := &csvWriter{w: csv.NewWriter(tmp)}
	for _, r := range rows {
		cw.Write(r)
	}
	cw.Flush()

	if err := errors.Join(cw.err, tmp.Close()); err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to write results file").
			WithDetails("path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to replace results file").
			WithDetails("path", path)
	}
	return nil
}
