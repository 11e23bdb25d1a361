package app

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/container"
	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/logging"
	"github.com/km-arc/go-services/framework/service"
)

// Runner hosts one container per service definition and starts and stops
// them together.
//
//	runner := app.NewRunner(cfg)
//	runner.Add(greeter)
//	err := runner.Run(ctx) // blocks until ctx is done
type Runner struct {
	cfg      *config.Config
	logger   *log.Logger
	registry *extension.Registry

	// how long Run waits for containers to stop
	StopTimeout time.Duration

	mu         sync.Mutex
	defs       []*service.Definition
	containers []*container.Container
}

// NewRunner creates a runner. Each container gets cfg.For(service name), so
// services pick their own HTTP address from cfg.Services. A nil cfg is
// loaded from the environment.
func NewRunner(cfg *config.Config) *Runner {
	if cfg == nil {
		cfg = config.Load()
	}
	return &Runner{
		cfg:         cfg,
		logger:      logging.New("runner", cfg.Log.Level),
		registry:    extension.Default(),
		StopTimeout: 10 * time.Second,
	}
}

// WithLogger replaces the runner's logger; containers inherit it.
func (r *Runner) WithLogger(logger *log.Logger) *Runner {
	r.logger = logger
	return r
}

// WithRegistry records every container's units in reg.
func (r *Runner) WithRegistry(reg *extension.Registry) *Runner {
	r.registry = reg
	return r
}

// Add registers a service definition. Definitions added after Start are
// picked up by the next Start.
func (r *Runner) Add(def *service.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, def)
}

// Containers returns the running containers, in Add order.
func (r *Runner) Containers() []*container.Container {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*container.Container, len(r.containers))
	copy(out, r.containers)
	return out
}

// Start builds and starts a container for every definition. If any fails,
// the ones already started are stopped and the error is returned.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.containers) > 0 {
		return errors.Errorf("runner already started")
	}
	for _, def := range r.defs {
		c, err := container.New(def,
			container.WithConfig(r.cfg.For(def.Name())),
			container.WithLogger(r.logger.WithPrefix(def.Name())),
			container.WithRegistry(r.registry))
		if err == nil {
			err = c.Start(ctx)
		}
		if err != nil {
			r.stopLocked(ctx)
			return errors.Annotatef(err, "starting %s", def.Name())
		}
		r.containers = append(r.containers, c)
	}
	r.logger.Info("services started", "count", len(r.containers))
	return nil
}

// Stop stops every container, last started first.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked(ctx)
}

func (r *Runner) stopLocked(ctx context.Context) error {
	var first error
	for i := len(r.containers) - 1; i >= 0; i-- {
		if err := r.containers[i].Stop(ctx); err != nil && first == nil {
			first = err
		}
	}
	r.containers = nil
	return first
}

// Run starts every service, waits for ctx to be done, then stops them.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), r.StopTimeout)
	defer cancel()
	return r.Stop(stopCtx)
}
