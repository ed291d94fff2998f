package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensedash/internal/core"
	applog "expensedash/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists expense records in a single local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	path    string
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		path:    dbPath,
		queries: New(db),
	}

	if err := repo.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// EnsureSchema guarantees the expenses table exists. Idempotent.
func (r *SQLiteRepository) EnsureSchema() error {
	if err := RunMigrations(r.path); err != nil {
		return &core.StorageError{Op: "ensure schema", Err: err}
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append inserts e and returns the id assigned by the store. The record is
// committed before Append returns; on failure nothing is inserted.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &core.StorageError{Op: "append", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	id, err := r.queries.WithTx(tx).CreateExpense(ctx, e)
	if err != nil {
		return 0, &core.StorageError{Op: "append", Err: fmt.Errorf("create expense: %w", err)}
	}
	if err := tx.Commit(); err != nil {
		return 0, &core.StorageError{Op: "append", Err: fmt.Errorf("commit: %w", err)}
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpAppend,
		applog.FieldExpenseID, id,
		applog.FieldCategory, e.Category,
		applog.FieldPaymentMode, e.PaymentMode,
		applog.FieldAmount, e.Amount)

	return id, nil
}

// LoadAll returns every record in insertion order.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]core.Expense, error) {
	items, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "load", Err: fmt.Errorf("list expenses: %w", err)}
	}
	return items, nil
}
