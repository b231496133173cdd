package resource

import (
	"fmt"
	"slices"

	"github.com/kbukum/filmotheque/database"
	"github.com/kbukum/filmotheque/redis"
)

// Driver names accepted by Config.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// DefaultDSN is the sqlite file used when none is configured.
const DefaultDSN = "file:filmotheque.db"

var drivers = []string{DriverMemory, DriverSQLite, DriverPostgres, DriverRedis}

// Config selects and configures the store driver.
type Config struct {
	Driver   string          `yaml:"driver" mapstructure:"driver"`
	Database database.Config `yaml:"database" mapstructure:"database"`
	Redis    redis.Config    `yaml:"redis" mapstructure:"redis"`
	// Tracing wraps the store in OpenTelemetry spans.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults defaults to the sqlite driver and fills the selected
// driver's section. The postgres driver has no default DSN.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	switch c.Driver {
	case DriverSQLite:
		if c.Database.DSN == "" {
			c.Database.DSN = DefaultDSN
		}
		c.Database.Dialect = database.DialectSQLite
		c.Database.ApplyDefaults()
	case DriverPostgres:
		c.Database.Dialect = database.DialectPostgres
		c.Database.ApplyDefaults()
	case DriverRedis:
		c.Redis.ApplyDefaults()
	}
}

// Validate checks the driver name and the selected driver's section.
func (c *Config) Validate() error {
	if !slices.Contains(drivers, c.Driver) {
		return fmt.Errorf("store.driver must be one of %v (got: %q)", drivers, c.Driver)
	}
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
		return c.Database.Validate()
	case DriverRedis:
		return c.Redis.Validate()
	}
	return nil
}
