package auth

import "context"

// Identity is the authenticated caller attached to request contexts.
type Identity struct {
	UserID string
	Role   string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}

	return identity, true
}
