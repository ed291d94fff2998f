package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger from the context, falling back to the default logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestInfo describes a finished HTTP request.
type RequestInfo struct {
	Method     string
	Path       string
	Query      string
	UserAgent  string
	ClientIP   string
	RequestID  string
	StatusCode int
	DurationMs int64
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPEnd logs the completion of an HTTP request; 4xx log at warn, 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r RequestInfo) {
	level := slog.LevelInfo
	if r.StatusCode >= 400 && r.StatusCode < 500 {
		level = slog.LevelWarn
	} else if r.StatusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.Path, r.Query, r.UserAgent).
		WithHTTPResponse(r.StatusCode, r.DurationMs).
		WithClientIP(r.ClientIP).
		WithRequestID(r.RequestID).
		WithComponent(ComponentHTTP)

	sl.logger.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogExpenseRecorded logs a successful append.
func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, id int64, category, paymentMode string, amount float64) {
	fields := NewFields().
		WithExpense(id, category, paymentMode, amount).
		WithOperation(OpRecord).
		WithComponent(ComponentExpense)

	sl.logger.Logger.InfoContext(ctx, "Expense recorded", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
