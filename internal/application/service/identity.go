package service

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the signed-in user as asserted by the identity provider
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// IdentityProvider answers who is making the current request
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (*Identity, bool)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// ContextIdentityProvider reads the identity placed on the context by the
// authentication middleware.
type ContextIdentityProvider struct{}

func (ContextIdentityProvider) CurrentIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == uuid.Nil {
		return nil, false
	}
	return &id, true
}
