// Package authctx carries the authenticated identity through a request
// context.
//
//	ctx = authctx.Set(ctx, identity)
//	id, ok := authctx.Get[session.Identity](ctx)
//
// The type parameter keeps this package free of any dependency on the
// identity type itself.
package authctx

import (
	"context"
	"errors"
)

type contextKey struct{}

var identityKey = contextKey{}

// ErrNoIdentity is returned when no identity of the requested type is in the context.
var ErrNoIdentity = errors.New("authctx: no identity in context")

// Set stores the authenticated identity in ctx.
func Set(ctx context.Context, identity any) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Get returns the identity stored in ctx when it has type T.
func Get[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(identityKey).(T)
	return v, ok
}

// GetOrError is Get returning ErrNoIdentity instead of a flag.
func GetOrError[T any](ctx context.Context) (T, error) {
	v, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoIdentity
	}
	return v, nil
}
