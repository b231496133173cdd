package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filmotheque/auth"
	"github.com/kbukum/filmotheque/auth/authctx"
	apperrors "github.com/kbukum/filmotheque/errors"
	"github.com/kbukum/filmotheque/logger"
)

// PrincipalKey is the Gin context key holding the resolved principal.
const PrincipalKey = "principal"

// UnauthorizedMessage is the only message the gate ever returns.
const UnauthorizedMessage = "Unauthorized."

// Auth protects a route group with bearer tokens. Every rejection gets the
// same 401 body; the reason is only logged.
func Auth(validator auth.TokenValidator, log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("auth")
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, reason := bearerToken(c.GetHeader("Authorization"))
		if reason != "" {
			log.WithContext(ctx).Debug("Request rejected", logger.Fields("reason", reason))
			abort(c, apperrors.Unauthorized(UnauthorizedMessage))
			return
		}

		principal, err := validator.ValidateToken(ctx, token)
		if err != nil {
			fields := logger.Fields("reason", err.Error())
			if errors.Is(err, auth.ErrUnauthenticated) {
				log.WithContext(ctx).Debug("Request rejected", fields)
			} else {
				log.WithContext(ctx).Error("Token resolution failed", fields)
			}
			abort(c, apperrors.Unauthorized(UnauthorizedMessage))
			return
		}

		ctx = authctx.Set(ctx, principal)
		if p, ok := principal.(auth.Principal); ok {
			ctx = logger.ContextWithAccountID(ctx, p.PrincipalID())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. reason is
// non-empty when the header is missing or not a two-part Bearer value.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing authorization header"
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "malformed authorization header"
	}
	return parts[1], ""
}
