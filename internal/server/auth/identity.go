package auth

import (
	"context"

	"github.com/dmitrijs2005/feedbox/internal/common"
)

type ctxKey struct{}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
}

// WithUser returns a copy of ctx carrying userID as the current identity.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// ResolveCurrentUser returns the identity attached to ctx, or
// common.ErrorUnauthorized when the request is anonymous.
func ResolveCurrentUser(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return Identity{}, common.ErrorUnauthorized
	}
	return Identity{UserID: id}, nil
}
