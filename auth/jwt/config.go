package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// DefaultTTL is the validity window applied when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Config configures the JWT token service.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// TTL is the validity window of issued tokens (default: 7 days).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("auth.jwt.secret is required")
	}
	if c.signingMethod() == nil {
		return fmt.Errorf("auth.jwt.method: unsupported %q (use HS256, HS384 or HS512)", c.Method)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("auth.jwt.ttl must be positive (got: %s)", c.TTL)
	}
	return nil
}

func (c *Config) signingMethod() *gojwt.SigningMethodHMAC {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}
