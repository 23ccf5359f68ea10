package repository

import (
	"context"
	"errors"
	"testing"

	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

func TestWithinTxWithoutTransactorRunsInline(t *testing.T) {
	repo := New(nil, nil, nil)

	var got *Repository
	err := repo.WithinTx(context.Background(), func(tx *Repository) error {
		got = tx
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != repo {
		t.Fatal("inline transaction should receive the same repository")
	}

	boom := errors.New("boom")
	if err := repo.WithinTx(context.Background(), func(*Repository) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want fn error, got %v", err)
	}
}

// unreachableDB satisfies database.PgxIface with only the methods the
// repositories use; every call fails.
type unreachableDB struct {
	err error
}

var _ database.PgxIface = (*unreachableDB)(nil)

func (d *unreachableDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, d.err
}

func (d *unreachableDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (d *unreachableDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, d.err
}

func (d *unreachableDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return nil, d.err
}

func (d *unreachableDB) Ping(context.Context) error { return d.err }

func (d *unreachableDB) Close() {}

func TestWithinTxBeginFailure(t *testing.T) {
	down := errors.New("connection refused")
	repo := NewRepository(&unreachableDB{err: down}, zap.NewNop())

	called := false
	err := repo.WithinTx(context.Background(), func(*Repository) error {
		called = true
		return nil
	})
	if !errors.Is(err, down) {
		t.Fatalf("want begin error, got %v", err)
	}
	if called {
		t.Fatal("fn must not run when the transaction cannot start")
	}
}
