package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pathbench/pkg/apperror"
)

// TxFunc функция, выполняемая в транзакции
type TxFunc func(tx pgx.Tx) error

// WithTransaction выполняет функцию в транзакции
func WithTransaction(ctx context.Context, db DB, fn TxFunc) error {
	_, err := WithTransactionResult(ctx, db, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// WithTransactionResult выполняет функцию в транзакции с возвратом результата.
// Ошибка fn возвращается как есть; ошибка отката прикрепляется в details.
func WithTransactionResult[T any](ctx context.Context, db DB, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var result T

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, apperror.Wrap(err, apperror.CodeStorageError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx) //nolint:errcheck // best effort on panic
			panic(p)
		}
	}()

	result, err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return result, apperror.Wrap(err, apperror.CodeStorageError, "transaction failed").
				WithDetails("rollback_error", rbErr.Error())
		}
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, apperror.Wrap(err, apperror.CodeStorageError, "failed to commit transaction")
	}

	return result, nil
}
