package repository

import (
	"context"
	"errors"
)

// ErrMirrorMiss is returned by CartMirror.Load when no entry exists
var ErrMirrorMiss = errors.New("cart mirror entry not found")

// CartMirror is the local durable copy of a session's cart. Each session has
// exactly one named entry holding the serialized cart lines.
type CartMirror interface {
	Load(ctx context.Context, session string) ([]byte, error)
	Save(ctx context.Context, session string, payload []byte) error
	Delete(ctx context.Context, session string) error
	Close() error
}
