// Package providers holds the injection providers services use most: the
// container configuration, per-container rate limiting and call metrics.
package providers

import (
	"context"

	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/extension"
)

// configured is implemented by containers that carry a configuration.
type configured interface {
	Config() *config.Config
}

// ── Config ────────────────────────────────────────────────────────────────────

// Config injects the container configuration, or a single value of it.
//
//	def.Attach("config", providers.NewConfig())            // *config.Config
//	def.Attach("greeting", providers.NewConfig("greeting")) // cfg.Value("greeting")
type Config struct {
	extension.InjectionProvider

	Key string
}

// NewConfig declares a Config provider. With a key it injects that value
// only.
func NewConfig(key ...string) *Config {
	p := &Config{}
	if len(key) > 0 {
		p.Key = key[0]
		p.Init(p.Key)
	} else {
		p.Init()
	}
	return p
}

// Acquire returns the configuration (or the keyed value) of the owning
// container.
func (p *Config) Acquire(_ context.Context, _ *extension.Worker) (any, error) {
	c, ok := p.Container().(configured)
	if !ok || c.Config() == nil {
		return nil, errors.Errorf("container %T carries no configuration", p.Container())
	}
	if p.Key == "" {
		return c.Config(), nil
	}
	v, ok := c.Config().Value(p.Key)
	if !ok {
		return nil, errors.Errorf("config key %q is not set", p.Key)
	}
	return v, nil
}
