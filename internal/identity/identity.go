// Package identity carries the authenticated caller through a request
// context. The auth middleware writes it; handlers read it and pass the id
// to services as a plain argument.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithUserID returns a copy of ctx carrying id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the caller's id, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
