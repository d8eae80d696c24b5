package services

import (
	"context"
	"fmt"

	"github.com/upb/proof-layer/repositories"
)

// WithTransaction runs fn within a database transaction. fn receives the
// transaction's context so repositories called with it join the transaction.
// Commits on success, rolls back on error or panic.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	_, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context, tx repositories.Transaction) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}

// WithTransactionResult is WithTransaction for functions that produce a value
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (T, error) {
	var result T

	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return result, NewDomainError(ErrorTypeInternal, "failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txCtx := tx.Context()
	if txCtx == nil {
		txCtx = ctx
	}

	result, err = fn(txCtx, tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return result, NewDomainError(ErrorTypeInternal,
				fmt.Sprintf("transaction error: %v, rollback error", err), rbErr)
		}
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return result, NewDomainError(ErrorTypeInternal, "failed to commit transaction", err)
	}

	return result, nil
}
