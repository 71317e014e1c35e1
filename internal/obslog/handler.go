// Package obslog adapts the process's slog.Handler to enrich every record
// with whichever correlation id is present on the context — an admin HTTP
// request id, or a browser workflow attempt id.
package obslog

import (
	"context"
	"log/slog"

	"github.com/averyhale/ytprem-scheduler/internal/requestid"
)

// ContextHandler wraps an slog.Handler and extracts correlation ids from
// the context of each log record.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler returns a handler that enriches every record with
// context values before delegating to inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id := requestid.AttemptIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("attempt_id", id))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
