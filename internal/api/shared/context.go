package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey is the type for request context values.
type ContextKey string

const (
	// OwnerIDContextKey carries the authenticated owner identity.
	OwnerIDContextKey ContextKey = "ownerID"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context for log correlation.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if unset.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithOwnerID returns a context carrying the authenticated owner identity.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerIDContextKey, ownerID)
}

// GetOwnerID retrieves the owner identity from the context. Returns ""
// for anonymous requests.
func GetOwnerID(ctx context.Context) string {
	ownerID, ok := ctx.Value(OwnerIDContextKey).(string)
	if !ok {
		return ""
	}
	return ownerID
}

// generateTraceID returns a 32-character hex trace ID. If the random
// source fails it falls back to a timestamp so the ID is never static.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		return fmt.Sprintf("%032x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
