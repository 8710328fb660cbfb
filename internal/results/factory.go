package results

import (
	"context"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/database"
	"pathbench/pkg/logger"
	"pathbench/pkg/metrics"
)

// Open создаёт хранилище по results.backend и оборачивает его инструментированием.
// Для postgres схема и миграции применяются здесь.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Instrumented, error) {
	backend := cfg.Results.Backend
	if backend == "" {
		backend = "csv"
	}

	var (
		st  Store
		err error
	)
	switch backend {
	case "csv":
		st, err = NewCSVStore(cfg.Results.Dir, cfg.Results.SummaryFile, cfg.Results.SamplesFile)
	case "postgres":
		st, err = openPostgres(ctx, &cfg.Database)
	case "redis":
		st, err = NewRedisStore(ctx, cfg.Redis)
	case "none":
		st = NopStore{}
	default:
		return nil, apperror.Newf(apperror.CodeInvalidConfig, "unknown results backend %q", backend).
			WithField("results.backend")
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Results store opened", "backend", backend)
	return NewInstrumented(st, backend, m), nil
}

func openPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresStore, error) {
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	st, err := preparePostgres(ctx, db, cfg.Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := database.RunMigrations(ctx, db.Pool(), cfg, MigrationsFS(), MigrationsDir); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// preparePostgres проверяет, что база отвечает на запросы, и создаёт схему.
// Недоступная база обнаруживается до первого прогона.
func preparePostgres(ctx context.Context, db database.DB, schema string) (*PostgresStore, error) {
	if err := database.HealthCheck(ctx, db); err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db, schema); err != nil {
		return nil, err
	}
	return NewPostgresStore(db, schema), nil
}
