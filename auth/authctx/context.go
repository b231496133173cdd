// Package authctx carries the authenticated principal through a request
// context.
//
//	ctx = authctx.Set(ctx, account)           // in the auth middleware
//	acc, ok := authctx.Get[*account.Account](ctx) // in handlers
package authctx

import (
	"context"
	"errors"
)

type contextKey struct{}

var principalKey = contextKey{}

// ErrNoPrincipal is returned when nothing was attached to the context.
var ErrNoPrincipal = errors.New("authctx: no principal in context")

// Set stores the principal in the context.
func Set(ctx context.Context, principal any) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// Get returns the principal if present and of type T.
func Get[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(principalKey).(T)
	return v, ok
}

// MustGet returns the principal or panics. Use behind the auth middleware
// only.
func MustGet[T any](ctx context.Context) T {
	v, ok := Get[T](ctx)
	if !ok {
		panic("authctx: principal not found in context or wrong type")
	}
	return v
}

// GetOrError returns the principal or ErrNoPrincipal.
func GetOrError[T any](ctx context.Context) (T, error) {
	v, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoPrincipal
	}
	return v, nil
}
