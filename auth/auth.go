package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated marks an expected rejection: missing or bad credentials,
// an expired token or an unknown principal. Other errors from a
// TokenValidator are infrastructure failures.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// TokenValidator validates a bearer token and returns whatever the request
// should carry forward (typically the resolved principal). Middleware depends
// on this contract rather than on the token format.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (any, error)
}

// TokenValidatorFunc adapts an ordinary function to the TokenValidator interface.
type TokenValidatorFunc func(ctx context.Context, token string) (any, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}

// Principal is implemented by validated principals that carry a stable id.
// The auth middleware adds the id to the request's log context.
type Principal interface {
	PrincipalID() string
}
