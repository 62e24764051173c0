// Package jwt signs and parses HMAC JSON Web Tokens for a caller-defined
// claims type.
//
//	svc, err := jwt.NewService(cfg, func() *session.Claims { return &session.Claims{} })
//	token, err := svc.Sign(claims)
//	claims, err := svc.Parse(token)
//
// Parse requires exp and iat, rejects any algorithm other than the configured
// one and runs the claims type's own Validate method when it has one.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every parse failure: malformed input, bad signature,
// wrong algorithm, expiry, or claims that fail validation.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Service signs and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	method   *gojwt.SigningMethodHMAC
	key      []byte
	ttl      time.Duration
	now      func() time.Time
	newEmpty func() T
}

// Option configures a Service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService creates a new JWT service. newEmpty returns a fresh T to decode into.
func NewService[T gojwt.Claims](cfg Config, newEmpty func() T, opts ...Option) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service[T]{
		method:   cfg.signingMethod(),
		key:      []byte(cfg.Secret),
		ttl:      cfg.TTL,
		now:      o.now,
		newEmpty: newEmpty,
	}, nil
}

// TTL returns the configured validity window.
func (s *Service[T]) TTL() time.Duration { return s.ttl }

// Now returns the current time according to the service clock.
func (s *Service[T]) Now() time.Time { return s.now() }

// Sign serializes and signs claims.
func (s *Service[T]) Sign(claims T) (string, error) {
	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and decodes its claims.
func (s *Service[T]) Parse(tokenString string) (T, error) {
	var zero T

	token, err := gojwt.ParseWithClaims(tokenString, s.newEmpty(), s.keyFunc,
		gojwt.WithValidMethods([]string{s.method.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return zero, ErrInvalidToken
	}

	claims, ok := token.Claims.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected claims type %T", ErrInvalidToken, token.Claims)
	}
	return claims, nil
}

func (s *Service[T]) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
	}
	return s.key, nil
}
