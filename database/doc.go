// Package database wraps GORM with retrying connects, pool configuration,
// logging through the service logger, transactions and a lifecycle
// Component.
//
// The default driver is sqlite (gorm.io/driver/sqlite); WithDriver swaps it.
//
//	db := database.NewComponent(cfg.Database, log).WithAutoMigrate(&Model{})
//	registry.Register(db)
package database
