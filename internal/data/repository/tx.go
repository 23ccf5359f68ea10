package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type pgTransactor struct {
	db   database.PgxIface
	base *zap.Logger
	log  *zap.Logger
}

func newPgTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &pgTransactor{
		db:   db,
		base: log,
		log:  log.With(zap.String("repository", "tx")),
	}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			t.log.Warn("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	txRepo := New(
		NewCarRepository(tx, t.base),
		NewBookingRepository(tx, t.base),
		nil,
	)

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}

	return nil
}
