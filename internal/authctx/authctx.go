// Package authctx carries the authenticated user through a request's
// context. Only the auth middleware writes it; handlers read it back
// with the typed accessors instead of digging through untyped state.
package authctx

import (
	"context"

	"github.com/aidarbek/todochat/internal/domain"
)

type userKey struct{}
type tokenKey struct{}

// WithSession attaches the resolved user and the raw token it was
// resolved from.
func WithSession(ctx context.Context, user *domain.User, rawToken string) context.Context {
	ctx = context.WithValue(ctx, userKey{}, user)
	return context.WithValue(ctx, tokenKey{}, rawToken)
}

// User returns the authenticated user, or ok=false when the request
// never passed the auth middleware.
func User(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*domain.User)
	return user, ok
}

// Token returns the raw token the current session authenticated with.
func Token(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}
