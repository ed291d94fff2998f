// Package services wires the record store, filter engine and query library
// into the operations exposed by the HTTP API and the CLI.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"expensedash/internal/analytics"
	"expensedash/internal/cache"
	"expensedash/internal/core"
	applog "expensedash/internal/log"
)

// Store is the append-only record store.
type Store interface {
	Append(ctx context.Context, e core.Expense) (int64, error)
	LoadAll(ctx context.Context) ([]core.Expense, error)
}

// Publisher emits events about stored expenses.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, e core.Expense) error
}

// ExpenseService records new expenses. Storage is authoritative: once the
// append commits, later steps only log their failures.
type ExpenseService struct {
	store     Store
	publisher Publisher
	queries   cache.Cache[analytics.Table]
	logger    *applog.StructuredLogger
}

// NewExpenseService builds the service. publisher and queries may be nil.
func NewExpenseService(store Store, publisher Publisher, queries cache.Cache[analytics.Table]) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		queries:   queries,
		logger:    applog.NewStructuredLogger(applog.New(applog.Config{Handler: slog.Default().Handler()})),
	}
}

// Record validates raw input and appends it. Invalid input returns a
// *core.ValidationError and nothing is stored.
func (s *ExpenseService) Record(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := core.NewExpense(in)
	if err != nil {
		slog.WarnContext(ctx, "Rejected expense input",
			applog.FieldComponent, applog.ComponentExpense,
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err.Error())
		return core.Expense{}, err
	}

	id, err := s.store.Append(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("record expense: %w", err)
	}
	e.ID = id

	if s.queries != nil {
		s.queries.Clear()
	}

	if err := s.publish(ctx, e); err != nil {
		s.logger.LogError(ctx, "Failed to publish expense recorded message", err,
			applog.ComponentAMQP, applog.OpRecord, applog.NewFields().WithExpense(e.ID, e.Category, e.PaymentMode, e.Amount))
	}

	s.logger.LogExpenseRecorded(ctx, e.ID, e.Category, e.PaymentMode, e.Amount)
	return e, nil
}

func (s *ExpenseService) publish(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event",
			applog.FieldComponent, applog.ComponentExpense,
			applog.FieldExpenseID, e.ID)
		return nil
	}
	return s.publisher.PublishExpenseRecorded(ctx, e)
}

// Close closes the store and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
