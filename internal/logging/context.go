package logging

import (
	"context"
	"log/slog"

	"whisperwiz/internal/services"
)

// Context-derived keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldItem      = "item"
	FieldStage     = "stage"
)

// ContextFields returns the run, item and stage attrs stored on ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	add := func(key string, value string, ok bool) {
		if ok {
			fields = append(fields, slog.String(key, value))
		}
	}
	id, ok := services.RunIDFromContext(ctx)
	add(FieldRunID, id, ok)
	item, ok := services.ItemFromContext(ctx)
	add(FieldItem, item, ok)
	stage, ok := services.StageFromContext(ctx)
	add(FieldStage, stage, ok)
	return fields
}

// WithContext returns logger with the fields of ctx attached.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if fields := ContextFields(ctx); len(fields) > 0 {
		return logger.With(toArgs(fields)...)
	}
	return logger
}

// NewComponentLogger tags logger with a component name. A nil logger discards.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
