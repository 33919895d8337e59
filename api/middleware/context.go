package middleware

import "context"

type contextKey string

const (
	ctxUserID        contextKey = "user_id"
	ctxHierarquia    contextKey = "hierarquia"
	ctxAccessID      contextKey = "access_id"
	ctxUpstreamToken contextKey = "upstream_token"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func HierarquiaFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxHierarquia).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// UpstreamTokenFromContext returns the restaurant backend bearer token held by
// the caller's session. Controllers pass it through on every upstream call.
func UpstreamTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUpstreamToken).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithHierarquia injects the caller's role into the context.
func WithHierarquia(ctx context.Context, hierarquia string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxHierarquia, hierarquia)
}

// WithUpstreamToken injects the upstream bearer token into the context.
func WithUpstreamToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUpstreamToken, token)
}
