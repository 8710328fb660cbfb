package results

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pathbench/pkg/apperror"
	"pathbench/pkg/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsDir каталог миграций внутри MigrationsFS
const MigrationsDir = "migrations"

// MigrationsFS возвращает встроенные миграции таблиц результатов
func MigrationsFS() embed.FS {
	return migrationsFS
}

const (
	summariesTable = "benchmark_summaries"
	samplesTable   = "benchmark_samples"
)

// PostgresStore хранит результаты в PostgreSQL
type PostgresStore struct {
	db        database.DB
	schema    string
	summaries string
	samples   string
}

// NewPostgresStore создаёт хранилище поверх db. Пустая схема означает search_path.
func NewPostgresStore(db database.DB, schema string) *PostgresStore {
	return &PostgresStore{
		db:        db,
		schema:    schema,
		summaries: database.QualifiedTable(schema, summariesTable),
		samples:   database.QualifiedTable(schema, samplesTable),
	}
}

// SaveSummary вставляет или обновляет сводку (size, case_name)
func (s *PostgresStore) SaveSummary(ctx context.Context, sum Summary) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			size, case_name,
			mean_s, max_s, min_s, total_s, stddev_s,
			repetitions, vertices, edges, run_id, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (size, case_name) DO UPDATE SET
			mean_s = EXCLUDED.mean_s,
			max_s = EXCLUDED.max_s,
			min_s = EXCLUDED.min_s,
			total_s = EXCLUDED.total_s,
			stddev_s = EXCLUDED.stddev_s,
			repetitions = EXCLUDED.repetitions,
			vertices = EXCLUDED.vertices,
			edges = EXCLUDED.edges,
			run_id = EXCLUDED.run_id,
			updated_at = EXCLUDED.updated_at`, s.summaries)

	_, err := s.db.Exec(ctx, query,
		sum.Size, sum.Case,
		sum.Mean, sum.Max, sum.Min, sum.Total, sum.StdDev,
		sum.Repetitions, sum.Vertices, sum.Edges, sum.RunID,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to upsert summary").
			WithDetails("size", sum.Size).
			WithDetails("case", sum.Case)
	}
	return nil
}

// SaveSamples удаляет старые замеры ключа и записывает новые через COPY в одной транзакции
func (s *PostgresStore) SaveSamples(ctx context.Context, key Key, samples []float64) error {
	return database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		del := fmt.Sprintf(`DELETE FROM %s WHERE size = $1 AND case_name = $2`, s.samples)
		if _, err := tx.Exec(ctx, del, key.Size, key.Case); err != nil {
			return apperror.Wrap(err, apperror.CodeStorageError, "failed to delete samples")
		}

		if len(samples) == 0 {
			return nil
		}

		rows := make([][]any, len(samples))
		for i, v := range samples {
			rows[i] = []any{key.Size, key.Case, i + 1, v}
		}

		n, err := tx.CopyFrom(ctx, s.samplesIdentifier(),
			[]string{"size", "case_name", "run", "seconds"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return apperror.Wrap(err, apperror.CodeStorageError, "failed to copy samples")
		}
		if n != int64(len(samples)) {
			return apperror.Newf(apperror.CodeStorageError,
				"copied %d samples, expected %d", n, len(samples))
		}
		return nil
	})
}

func (s *PostgresStore) samplesIdentifier() pgx.Identifier {
	if s.schema == "" {
		return pgx.Identifier{samplesTable}
	}
	return pgx.Identifier{s.schema, samplesTable}
}

// ListSummaries возвращает все сводки, упорядоченные по размеру и случаю
func (s *PostgresStore) ListSummaries(ctx context.Context) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT
			size, case_name,
			mean_s, max_s, min_s, total_s, stddev_s,
			repetitions, vertices, edges, run_id, updated_at
		FROM %s
		ORDER BY size, case_name`, s.summaries)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to list summaries")
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var sum Summary
		err := row.Scan(
			&sum.Size, &sum.Case,
			&sum.Mean, &sum.Max, &sum.Min, &sum.Total, &sum.StdDev,
			&sum.Repetitions, &sum.Vertices, &sum.Edges, &sum.RunID, &sum.UpdatedAt,
		)
		return sum, err
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to scan summaries")
	}
	return out, nil
}

// ListSamples возвращает замеры ключа по порядку запусков
func (s *PostgresStore) ListSamples(ctx context.Context, key Key) ([]float64, error) {
	query := fmt.Sprintf(`SELECT seconds FROM %s WHERE size = $1 AND case_name = $2 ORDER BY run`, s.samples)

	rows, err := s.db.Query(ctx, query, key.Size, key.Case)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to list samples")
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to scan samples")
	}
	return out, nil
}

// Close закрывает пул соединений
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
