// Package requestid carries correlation ids through context.Context — one
// kind for admin HTTP requests, another for browser workflow attempts — so
// log lines from either surface can be grepped back to a single event.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type requestCtxKey struct{}
type attemptCtxKey struct{}

// New generates a random UUID v4 request id, used for admin HTTP calls.
func New() string {
	return uuid.NewString()
}

// NewAttemptID generates a random UUID v4 for one workflow attempt
// (one browser session against one row).
func NewAttemptID() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx carrying the admin HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// FromContext extracts the admin HTTP request id. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestCtxKey{}).(string)
	return id
}

// WithAttemptID returns a copy of ctx carrying the workflow attempt id.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptCtxKey{}, id)
}

// AttemptIDFromContext extracts the workflow attempt id. Returns "" if
// absent.
func AttemptIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(attemptCtxKey{}).(string)
	return id
}
