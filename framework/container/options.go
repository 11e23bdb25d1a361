package container

import (
	"github.com/charmbracelet/log"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/extension"
)

// Option configures a Container.
type Option func(*Container)

// WithConfig sets the configuration units read through the container.
func WithConfig(cfg *config.Config) Option {
	return func(c *Container) { c.cfg = cfg }
}

// WithLogger replaces the container's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithRegistry records bound units in reg instead of the process-wide
// registry.
func WithRegistry(reg *extension.Registry) Option {
	return func(c *Container) { c.registry = reg }
}
