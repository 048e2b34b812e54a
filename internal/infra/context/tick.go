package context

import (
	"context"
)

const contextKeyTick = contextKey("tick")

// TickFromContext extracts the scheduler tick from the context.
// Returns the tick and true if present, or zero and false if not present.
func TickFromContext(ctx context.Context) (int, bool) {
	tick, ok := ctx.Value(contextKeyTick).(int)

	return tick, ok
}

// WithTick creates a new context carrying the scheduler tick the current
// verification run belongs to.
func WithTick(ctx context.Context, tick int) context.Context {
	return context.WithValue(ctx, contextKeyTick, tick)
}
