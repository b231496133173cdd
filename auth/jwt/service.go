// Package jwt signs and verifies session tokens with golang-jwt.
//
// The service is parameterized by a claims type T that embeds
// jwt.RegisteredClaims and adds the application fields:
//
//	type SessionClaims struct {
//	    jwt.RegisteredClaims
//	    Courriel string `json:"courriel"`
//	    ID       string `json:"id"`
//	}
//
//	svc, err := jwt.NewService(&cfg, func() *SessionClaims { return &SessionClaims{} })
//	token, err := svc.GenerateAccess(&SessionClaims{Courriel: c, ID: id})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures and
	// unexpected algorithms.
	ErrTokenInvalid = errors.New("jwt: invalid token")

	// ErrTokenExpired is returned when a correctly signed token is past its
	// expiry.
	ErrTokenExpired = errors.New("jwt: token expired")
)

// DefaultsSetter is implemented by claims types that want iat/exp filled in
// by GenerateAccess.
type DefaultsSetter interface {
	SetDefaults(now time.Time, ttl time.Duration, issuer string)
}

// Service provides JWT token generation and parsing for claims type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a new JWT service. newEmpty returns a fresh T for parsing.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	return &Service[T]{cfg: *cfg, newEmpty: newEmpty, now: time.Now}, nil
}

// Generate signs the claims as given.
func (s *Service[T]) Generate(claims T) (string, error) {
	token := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess sets iat=now and exp=now+AccessTokenTTL on claims that
// implement DefaultsSetter, then signs them.
func (s *Service[T]) GenerateAccess(claims T) (string, error) {
	if setter, ok := any(claims).(DefaultsSetter); ok {
		setter.SetDefaults(s.now(), s.cfg.AccessTokenTTL, s.cfg.Issuer)
	}
	return s.Generate(claims)
}

// Parse verifies the signature and expiry of a token and returns its claims.
// Failures are reported as ErrTokenExpired or ErrTokenInvalid, wrapping the
// underlying cause.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T
	claims := s.newEmpty()
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return zero, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return zero, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return zero, ErrTokenInvalid
	}
	parsed, ok := token.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type", ErrTokenInvalid)
	}
	return parsed, nil
}

// TTL returns the configured access token lifetime.
func (s *Service[T]) TTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// keyFunc is the jwt.Keyfunc used during token parsing.
func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

// parserOptions returns jwt.ParserOption based on config.
func (s *Service[T]) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
		// Reject non-canonical base64 so no two encodings verify.
		gojwt.WithStrictDecoding(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}
