package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/fittrack/auth/jwt"
	"github.com/kbukum/fittrack/auth/password"
	"github.com/kbukum/fittrack/auth/revocation"
	"github.com/kbukum/fittrack/config"
	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/observability"
	"github.com/kbukum/fittrack/redis"
	"github.com/kbukum/fittrack/server"
	"github.com/kbukum/fittrack/version"
)

const serviceName = "fittrack"

// envAliases maps the bare variable names older deployments use.
var envAliases = map[string]string{
	"PORT":       "server.port",
	"JWT_SECRET": "auth.jwt.secret",
}

// Config is the complete fittrack configuration.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Auth          AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// AuthConfig groups token, password and revocation settings.
type AuthConfig struct {
	JWT        jwt.Config        `yaml:"jwt" mapstructure:"jwt"`
	Password   password.Config   `yaml:"password" mapstructure:"password"`
	Revocation revocation.Config `yaml:"revocation" mapstructure:"revocation"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	if c.Redis.Enabled {
		c.Redis.ApplyDefaults()
	}
	c.Auth.JWT.ApplyDefaults()
	c.Auth.Password.ApplyDefaults()
	c.Auth.Revocation.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if err := c.Auth.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Password.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Revocation.Validate(); err != nil {
		return err
	}
	if c.Auth.Revocation.Backend == revocation.BackendRedis && !c.Redis.Enabled {
		return errors.New("auth.revocation.backend=redis requires redis.enabled")
	}
	return c.Observability.Validate()
}

// gracefulTimeout bounds the whole shutdown: the HTTP drain plus time for
// the remaining components to close. Call after ApplyDefaults.
func (c *Config) gracefulTimeout() time.Duration {
	return c.Server.ShutdownTimeout + 10*time.Second
}

// migrateConfig is the subset the migrate command needs. It does not
// require the signing secret.
type migrateConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	Database database.Config `yaml:"database" mapstructure:"database"`
}

func (c *migrateConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Database.ApplyDefaults()
}

func (c *migrateConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Database.Validate()
}
