// Package auth validates bearer tokens on service requests. Two modes are
// supported: a shared secret compared in constant time, and JWTs verified
// against a provider's JWKS.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
)

// ErrUnauthorized reports a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) error
}

// NewValidator builds the validator for the configured auth mode. Mode
// none returns nil; callers skip the middleware entirely.
func NewValidator(cfg config.AuthConfig) (TokenValidator, error) {
	switch cfg.Mode {
	case config.AuthModeNone:
		return nil, nil
	case config.AuthModeSecret:
		return NewSecretValidator(cfg.Secret), nil
	case config.AuthModeJWT:
		return NewJWTValidator(cfg.JWKSURL, cfg.Issuer, cfg.Audience)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

// SecretValidator compares tokens against a shared secret.
type SecretValidator struct {
	secret []byte
}

func NewSecretValidator(secret string) *SecretValidator {
	return &SecretValidator{secret: []byte(secret)}
}

// ValidateToken compares in constant time.
func (v *SecretValidator) ValidateToken(_ context.Context, token string) error {
	if subtle.ConstantTimeCompare(v.secret, []byte(token)) != 1 {
		return fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return nil
}
