package bootstrap

import (
	"github.com/kbukum/filmotheque/config"
)

// Config is the constraint on application config types. Any struct embedding
// config.ServiceConfig satisfies it through the promoted methods, provided it
// is used by pointer.
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
