package main

import (
	"fmt"

	"github.com/kbukum/filmotheque/auth"
	"github.com/kbukum/filmotheque/config"
	"github.com/kbukum/filmotheque/observability"
	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/server"
)

// Config is the filmotheque service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Store         resource.Config      `yaml:"store" mapstructure:"store"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}

func loadConfig() (*Config, error) {
	var cfg Config
	err := config.LoadConfig(serviceName, &cfg,
		config.WithEnvAlias("PORT", "server.port"),
		config.WithEnvAlias("JWT_SECRET", "auth.jwt.secret"),
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
