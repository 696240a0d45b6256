package auth

import (
	"context"

	"github.com/akozyrev/leadwell/internal/user"
)

type contextKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the authenticated user, or nil when the request
// is anonymous.
func FromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(contextKey{}).(*user.User)
	return u
}
