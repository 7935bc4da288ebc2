// Package context carries run tracing values through a context.Context
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	packageKey
	startTimeKey
)

// RunIDEnv passes the parent's run id to re-invoked children
const RunIDEnv = "CRATESWEEP_RUN_ID"

// WithRunID adds a run ID to the context
func WithRunID(parent context.Context, runID string) context.Context {
	if runID == "" {
		runID = GenerateRunID()
	}
	return context.WithValue(parent, runIDKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		return id
	}
	return ""
}

// WithPackage records the package being attempted
func WithPackage(parent context.Context, pkg string) context.Context {
	return context.WithValue(parent, packageKey, pkg)
}

// GetPackage retrieves the package being attempted
func GetPackage(ctx context.Context) string {
	if pkg, ok := ctx.Value(packageKey).(string); ok {
		return pkg
	}
	return ""
}

// WithStartTime adds the operation start time to the context
func WithStartTime(parent context.Context, startTime time.Time) context.Context {
	return context.WithValue(parent, startTimeKey, startTime)
}

// GetDuration calculates the duration since the start time in context.
// It is zero when no start time was recorded.
func GetDuration(ctx context.Context) time.Duration {
	if t, ok := ctx.Value(startTimeKey).(time.Time); ok {
		return time.Since(t)
	}
	return 0
}

// GenerateRunID creates a new unique run ID
func GenerateRunID() string {
	return "run_" + uuid.New().String()
}

// EnrichContext adds a run ID, unless present, and a start time
func EnrichContext(parent context.Context) context.Context {
	ctx := parent
	if GetRunID(ctx) == "" {
		ctx = WithRunID(ctx, GenerateRunID())
	}
	return WithStartTime(ctx, time.Now())
}
