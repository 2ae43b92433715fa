package config

import (
	"fmt"
	"os"
)

// AuthMode selects how bearer tokens are validated.
type AuthMode string

const (
	// AuthModeNone disables authentication entirely.
	AuthModeNone AuthMode = "none"
	// AuthModeSecret compares the bearer token against AUTH_SECRET.
	AuthModeSecret AuthMode = "secret"
	// AuthModeJWT validates the bearer token as a JWT against a JWKS URL.
	AuthModeJWT AuthMode = "jwt"
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Mode AuthMode

	// Secret is the shared bearer token (AUTH_SECRET).
	Secret string

	// JWT validation settings.
	JWKSURL  string
	Issuer   string
	Audience string
}

// AuthConfigFromEnv builds AuthConfig from environment variables.
// The presence of AUTH_SECRET enables secret mode unless AUTH_MODE says
// otherwise.
func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		Mode:     AuthMode(os.Getenv("AUTH_MODE")),
		Secret:   os.Getenv("AUTH_SECRET"),
		JWKSURL:  os.Getenv("AUTH_JWKS_URL"),
		Issuer:   os.Getenv("AUTH_ISSUER"),
		Audience: os.Getenv("AUTH_AUDIENCE"),
	}
}

// SetDefaults applies default values.
func (c *AuthConfig) SetDefaults() {
	if c.Mode == "" {
		if c.Secret != "" {
			c.Mode = AuthModeSecret
		} else {
			c.Mode = AuthModeNone
		}
	}
}

// Validate checks the auth configuration.
func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case AuthModeNone:
	case AuthModeSecret:
		if c.Secret == "" {
			return fmt.Errorf("AUTH_SECRET is required when AUTH_MODE=secret")
		}
	case AuthModeJWT:
		if c.JWKSURL == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q (valid: none, secret, jwt)", c.Mode)
	}
	return nil
}

// Enabled reports whether authentication is active.
func (c *AuthConfig) Enabled() bool {
	return c.Mode != AuthModeNone
}
