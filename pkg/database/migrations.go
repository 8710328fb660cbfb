package database

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
	"pathbench/pkg/logger"
)

// Migrator управляет миграциями
type Migrator struct {
	pool       *pgxpool.Pool
	migrations fs.FS
	dir        string
}

// NewMigrator создаёт новый мигратор
func NewMigrator(pool *pgxpool.Pool, migrations fs.FS, dir string) *Migrator {
	return &Migrator{
		pool:       pool,
		migrations: migrations,
		dir:        dir,
	}
}

func (m *Migrator) open() (*sql.DB, error) {
	goose.SetBaseFS(m.migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStorageError, "failed to set dialect")
	}
	return stdlib.OpenDBFromPool(m.pool), nil
}

// Up применяет все миграции
func (m *Migrator) Up(ctx context.Context) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, m.dir); err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to run migrations")
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStorageError, "failed to read migration version")
	}

	logger.Log.Info("Migrations applied successfully", "version", version)
	return nil
}

// RunMigrations запускает миграции если включено в конфигурации
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.DatabaseConfig, migrations fs.FS, dir string) error {
	if !cfg.AutoMigrate {
		logger.Log.Info("Auto-migration is disabled")
		return nil
	}

	return NewMigrator(pool, migrations, dir).Up(ctx)
}
