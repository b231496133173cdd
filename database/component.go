package database

import (
	"context"
	"fmt"

	"github.com/kbukum/filmotheque/component"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/util"
)

// Component wraps DB for lifecycle management.
type Component struct {
	db     *DB
	cfg    Config
	driver DriverFunc
	log    *logger.Logger
	models []interface{}
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database component using the driver for
// cfg.Dialect.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, driver: DriverFor(cfg.Dialect), log: log.WithComponent("database")}
}

// WithDriver overrides the gorm dialector.
func (c *Component) WithDriver(driver DriverFunc) *Component {
	c.driver = driver
	return c
}

// WithAutoMigrate registers models migrated on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	return c.db
}

func (c *Component) Name() string { return "database" }

// Start connects and runs auto-migration for the registered models.
func (c *Component) Start(ctx context.Context) error {
	db, err := New(ctx, c.cfg, c.driver, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	c.db = db

	if len(c.models) > 0 {
		if err := c.db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "database not initialized"}
	}
	stats, err := c.db.CheckHealth(ctx)
	if err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("latency=%s open=%d in_use=%d", stats.Latency, stats.OpenConns, stats.InUseConns),
	}
}

// Describe returns the startup summary entry.
func (c *Component) Describe() component.Description {
	name := "SQLite"
	if c.cfg.Dialect == DialectPostgres {
		name = "PostgreSQL"
	}
	return component.Description{
		Name:    name,
		Type:    "database",
		Details: fmt.Sprintf("%s pool=%d/%d", util.MaskDSN(c.cfg.DSN), c.cfg.MaxOpenConns, c.cfg.MaxIdleConns),
	}
}
