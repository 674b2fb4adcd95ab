package middleware

import "context"

type contextKey string

const (
	ctxSessionID     contextKey = "session_id"
	ctxSessionMinted contextKey = "session_minted"
)

// SessionIDFromContext returns the cart session bound by Session.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the cart session id into the context for downstream handlers.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// SessionMinted reports whether Session generated the id on this request,
// meaning no cart can exist for it yet.
func SessionMinted(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	minted, _ := ctx.Value(ctxSessionMinted).(bool)
	return minted
}

// WithMintedSession binds a freshly generated session id.
func WithMintedSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(WithSessionID(ctx, sessionID), ctxSessionMinted, true)
}
