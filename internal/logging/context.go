package logging

import (
	"context"
	"log/slog"

	"podium/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for batch run identifiers.
	FieldRunID = "run_id"
	// FieldEntry is the standardized structured logging key for the recommendation
	// entry being processed ("Composer: Work").
	FieldEntry = "entry"
	// FieldQuery is the standardized structured logging key for search query text.
	FieldQuery = "query"
	// FieldScore is the standardized structured logging key for quality scores.
	FieldScore = "score"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if entry, ok := services.EntryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEntry, entry))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
