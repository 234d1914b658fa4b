package core

import "context"

// Context keys for build options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	skipCacheKey      contextKey = "skipCache"
)

// WithSuppressHeader marks the context so that progress headers are not printed.
// The MCP and HTTP surfaces use it because stdout belongs to the protocol there.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithSkipCache marks the context so that the series cache is bypassed.
func WithSkipCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipCacheKey, true)
}

// shouldSkipCache returns whether the series cache should be bypassed
func shouldSkipCache(ctx context.Context) bool {
	val := ctx.Value(skipCacheKey)
	if val == nil {
		return false
	}
	skip, ok := val.(bool)
	return ok && skip
}
