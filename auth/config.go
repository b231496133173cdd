package auth

import (
	"fmt"

	"github.com/kbukum/filmotheque/auth/jwt"
	"github.com/kbukum/filmotheque/auth/password"
)

// Config holds all authentication configuration.
type Config struct {
	// JWT configures session token signing.
	JWT jwt.Config `mapstructure:"jwt"`

	// Password configures credential hashing.
	Password password.Config `mapstructure:"password"`
}

// ApplyDefaults sets defaults on every sub-configuration.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks every sub-configuration.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
// Example: "JWT(HS256) TTL=24h0m0s password=bcrypt(10)"
func (c *Config) Describe() string {
	line := fmt.Sprintf("JWT(%s) TTL=%s password=%s", c.JWT.Method, c.JWT.AccessTokenTTL, c.Password.Algorithm)
	if c.Password.Algorithm == password.AlgorithmBcrypt {
		line += fmt.Sprintf("(%d)", c.Password.BcryptCost)
	}
	return line
}
