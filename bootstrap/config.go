package bootstrap

import (
	"github.com/kbukum/fittrack/config"
)

// Config is the constraint on application config types. Embedding
// config.ServiceConfig provides GetServiceConfig; the embedding type
// overrides ApplyDefaults and Validate to cover its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
