package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	entryKey contextKey = "entry"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEntry annotates context with the recommendation entry being processed,
// in "Composer: Work" form.
func WithEntry(ctx context.Context, entry string) context.Context {
	if entry == "" {
		return ctx
	}
	return context.WithValue(ctx, entryKey, entry)
}

// EntryFromContext returns the current entry label if present.
func EntryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(entryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
