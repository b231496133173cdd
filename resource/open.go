package resource

import (
	"fmt"

	"github.com/kbukum/filmotheque/component"
	"github.com/kbukum/filmotheque/database"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/redis"
)

// Backend is an opened store plus the components that must be started
// before it is used.
type Backend struct {
	Store      Store
	Components []component.Component
}

// Open builds the store selected by cfg. Connections are made when the
// returned components start.
func Open(cfg Config, log *logger.Logger) (*Backend, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var b Backend
	switch cfg.Driver {
	case DriverMemory:
		b.Store = NewMemoryStore()
	case DriverSQLite, DriverPostgres:
		db := database.NewComponent(cfg.Database, log).WithAutoMigrate(Models()...)
		b.Store = NewSQLStore(db)
		b.Components = append(b.Components, db)
	case DriverRedis:
		rc := redis.NewComponent(cfg.Redis, log)
		b.Store = NewRedisStore(rc)
		b.Components = append(b.Components, rc)
	default:
		return nil, fmt.Errorf("resource: unknown driver %q", cfg.Driver)
	}

	if cfg.Tracing {
		b.Store = Traced(b.Store, cfg.Driver)
	}
	log.Info("Resource store configured", logger.Fields("driver", cfg.Driver, "tracing", cfg.Tracing))
	return &b, nil
}
