package context

import (
	"context"
)

type contextKey string

const contextKeyRunID = contextKey("runID")

// RunIDFromContext extracts the verification run ID from the context.
// Returns the run ID and true if present, or empty string and false if not present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(contextKeyRunID).(string)

	return runID, ok
}

// WithRunID creates a new context with the given run ID value.
// The run ID correlates all log lines and outgoing requests of one
// verification invocation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKeyRunID, runID)
}
