package storage

import (
	"context"
	"database/sql"

	"expensedash/internal/core"
)

const (
	createExpense = `
INSERT INTO expenses (date, category, payment_mode, description, amount, cashback)
VALUES (?, ?, ?, ?, ?, ?)`

	listExpenses = `
SELECT id,
       COALESCE(date, ''),
       COALESCE(category, ''),
       COALESCE(payment_mode, ''),
       COALESCE(description, ''),
       COALESCE(amount, 0),
       COALESCE(cashback, 0)
FROM expenses
ORDER BY id`
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Queries holds the statements used by the repository, bound to a DB or Tx.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, createExpense,
		e.Date, e.Category, e.PaymentMode, e.Description, e.Amount, e.Cashback)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]core.Expense, 0)
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.PaymentMode, &e.Description, &e.Amount, &e.Cashback); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
