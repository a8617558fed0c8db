package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey ctxKey = "userID"
	ContextRoleKey ctxKey = "userRole"
)

// DefaultStoreTimeout bounds a single store round trip when the caller set no deadline.
const DefaultStoreTimeout = 5 * time.Second

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if role, ok := ctx.Value(ContextRoleKey).(string); ok {
		return role
	}
	return ""
}

func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, userID)
	return context.WithValue(ctx, ContextRoleKey, role)
}

// WithTimeout returns a context with timeout, defaulting to DefaultStoreTimeout if duration is zero or negative.
// A context that already carries a deadline is returned unchanged.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	if duration <= 0 {
		duration = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, duration)
}
