package logging

import (
	"context"
	"log/slog"

	context_ "github.com/mkrupp/filedrop-checker/internal/infra/context"
)

// RunHandler wraps another slog.Handler to add the verification run ID and
// scheduler tick from the context to all log records.
type RunHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*RunHandler)(nil)

// NewRunHandler creates a new RunHandler wrapping the given handler.
func NewRunHandler(h slog.Handler) *RunHandler {
	return &RunHandler{h: h}
}

// Handle implements slog.Handler by adding run ID and tick information if
// available in the context before delegating to the wrapped handler.
func (h *RunHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []slog.Attr

	if runID, ok := context_.RunIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("id", runID))
	}

	if tick, ok := context_.TickFromContext(ctx); ok {
		attrs = append(attrs, slog.Int("tick", tick))
	}

	if len(attrs) > 0 {
		r.AddAttrs(slog.Attr{Key: "run", Value: slog.GroupValue(attrs...)})
	}

	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *RunHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RunHandler{h: h.h.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *RunHandler) WithGroup(name string) slog.Handler {
	return &RunHandler{h: h.h.WithGroup(name)}
}

// Enabled implements slog.Handler.Enabled.
func (h *RunHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
