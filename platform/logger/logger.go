// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// CycleIDKey is the context key for the evaluation cycle ID
	CycleIDKey contextKey = "cycle_id"
	// LeadIDKey is the context key for the lead being evaluated
	LeadIDKey contextKey = "lead_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports cycle_id and lead_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if cycleID, ok := ctx.Value(CycleIDKey).(string); ok && cycleID != "" {
		newLogger = newLogger.WithCycleID(cycleID)
	}

	if leadID, ok := ctx.Value(LeadIDKey).(string); ok && leadID != "" {
		newLogger = newLogger.WithLeadID(leadID)
	}

	return newLogger
}

// WithCycleID returns a logger with the evaluation cycle ID
func (l *Logger) WithCycleID(cycleID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("cycle_id", cycleID)),
	}
}

// WithLeadID returns a logger with the lead ID
func (l *Logger) WithLeadID(leadID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("lead_id", leadID)),
	}
}

// DecisionEvent logs the outcome of a follow-up evaluation
func (l *Logger) DecisionEvent(leadID string, approved bool, gate string, score int, arcPosition int) {
	l.Info("followup_decision",
		slog.String("lead_id", leadID),
		slog.Bool("approved", approved),
		slog.String("gate", gate),
		slog.Int("score", score),
		slog.Int("arc_position", arcPosition),
	)
}

// MutationError logs a failed escalation arc mutation. These are retryable
// infrastructure failures and must never invalidate an issued decision.
func (l *Logger) MutationError(operation, leadID string, err error) {
	l.Error("arc_mutation_error",
		slog.String("operation", operation),
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	)
}

// CycleSummary logs the outcome of one evaluation cycle
func (l *Logger) CycleSummary(cycleID string, evaluated, approved, skipped int) {
	l.Info("evaluation_cycle",
		slog.String("cycle_id", cycleID),
		slog.Int("evaluated", evaluated),
		slog.Int("approved", approved),
		slog.Int("skipped", skipped),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
