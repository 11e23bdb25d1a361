package container

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/logging"
	"github.com/km-arc/go-services/framework/service"
)

const (
	stateCreated int32 = iota
	stateRunning
	stateStopped
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container hosts one service definition. It owns a bound clone of every
// declaration the definition carries; no other container ever sees them.
type Container struct {
	id       string
	def      *service.Definition
	cfg      *config.Config
	logger   *log.Logger
	registry *extension.Registry

	// declaration → bound clone, attributes first, then entrypoints
	bindings []Binding

	// serialises Start and Stop
	mu    sync.Mutex
	state atomic.Int32
}

// New builds a container for def and binds every declaration to it. If any
// clone or bind fails, New returns the error and no container.
//
//	c, err := container.New(def, container.WithConfig(cfg))
func New(def *service.Definition, opts ...Option) (*Container, error) {
	c := &Container{
		id:       uuid.NewString(),
		def:      def,
		registry: extension.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		c.cfg = config.Load()
	}
	if c.logger == nil {
		c.logger = logging.New(def.Name(), c.cfg.Log.Level)
	}

	def.Seal()
	bindings, err := BindTo(c.registry, def, c)
	if err != nil {
		c.logger.Error("container construction failed", "service", def.Name(), "err", err)
		return nil, errors.Annotatef(err, "building container for %s", def.Name())
	}
	c.bindings = bindings

	c.logger.Debug("container bound",
		"id", c.id, "declarations", len(bindings), "units", len(c.registry.Units(c)))
	return c, nil
}

// ID returns the container's unique id.
func (c *Container) ID() string { return c.id }

// Definition returns the service definition the container was built from.
func (c *Container) Definition() *service.Definition { return c.def }

// Config returns the container configuration.
func (c *Container) Config() *config.Config { return c.cfg }

// Logger returns the container logger.
func (c *Container) Logger() *log.Logger { return c.logger }

// Registry returns the registry the container's units are recorded in.
func (c *Container) Registry() *extension.Registry { return c.registry }

// Bindings returns one entry per declaration of the definition.
func (c *Container) Bindings() []Binding {
	out := make([]Binding, len(c.bindings))
	copy(out, c.bindings)
	return out
}

// Units returns every bound unit, nested children included, in bind order.
func (c *Container) Units() []extension.Unit {
	return c.registry.Units(c)
}

// Running reports whether the container is between Start and Stop.
func (c *Container) Running() bool { return c.state.Load() == stateRunning }

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Start runs Setup on every bound unit, then Start: extensions and
// injections first, entrypoints last, so nothing is triggered before what
// it depends on is up.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Load() != stateCreated {
		return errors.Trace(ErrAlreadyStarted)
	}

	units := c.registry.Units(c)
	for _, u := range units {
		if err := u.Setup(ctx); err != nil {
			c.abort(ctx, nil)
			return &LifecycleError{Phase: "setup", Name: u.Name(), Err: err}
		}
	}

	var started []extension.Unit
	for _, u := range startOrder(units) {
		if err := u.Start(ctx); err != nil {
			c.abort(ctx, started)
			return &LifecycleError{Phase: "start", Name: u.Name(), Err: err}
		}
		started = append(started, u)
	}

	c.state.Store(stateRunning)
	c.logger.Info("container started", "id", c.id, "units", len(units))
	return nil
}

// Stop stops entrypoints first, then everything else in reverse bind order,
// and removes the container from the registry. The first error is returned
// after every unit had its chance to stop.
func (c *Container) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Load() {
	case stateStopped:
		return nil
	case stateCreated:
		c.state.Store(stateStopped)
		c.registry.Forget(c)
		return nil
	}

	c.state.Store(stateStopped)
	err := c.stopUnits(ctx, startOrder(c.registry.Units(c)))
	c.registry.Forget(c)
	c.logger.Info("container stopped", "id", c.id)
	return err
}

// abort stops what started and forgets the container after a failed Start.
func (c *Container) abort(ctx context.Context, started []extension.Unit) {
	if err := c.stopUnits(ctx, started); err != nil {
		c.logger.Warn("stop after failed start", "id", c.id, "err", err)
	}
	c.state.Store(stateStopped)
	c.registry.Forget(c)
}

// stopUnits stops units in the reverse of the given start order.
func (c *Container) stopUnits(ctx context.Context, units []extension.Unit) error {
	var first error
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if err := u.Stop(ctx); err != nil {
			c.logger.Error("unit failed to stop", "name", u.Name(), "err", err)
			if first == nil {
				first = &LifecycleError{Phase: "stop", Name: u.Name(), Err: err}
			}
		}
	}
	return first
}

// startOrder puts entrypoints after every other unit, keeping bind order
// within each group.
func startOrder(units []extension.Unit) []extension.Unit {
	out := make([]extension.Unit, 0, len(units))
	var entrypoints []extension.Unit
	for _, u := range units {
		if u.Role() == extension.RoleEntrypoint {
			entrypoints = append(entrypoints, u)
			continue
		}
		out = append(out, u)
	}
	return append(out, entrypoints...)
}

// ── Dispatch ──────────────────────────────────────────────────────────────────

// Invoke runs a service method: every class-level injection provider
// supplies its value for the call, then the method handler runs on the
// caller's goroutine.
//
//	result, err := c.Invoke(ctx, "hello", "world")
func (c *Container) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	if !c.Running() {
		return nil, errors.Trace(ErrNotRunning)
	}
	m := c.def.Method(method)
	if m == nil {
		return nil, &MethodNotFoundError{Service: c.def.Name(), Method: method}
	}

	w := &extension.Worker{ID: uuid.NewString(), Service: c.def.Name(), Method: method}
	injected := make(map[string]any)
	for _, b := range c.bindings {
		if b.Method != "" {
			continue
		}
		inj, ok := b.Unit.(extension.Injector)
		if !ok {
			continue
		}
		v, err := inj.Acquire(ctx, w)
		if err != nil {
			return nil, &InjectionError{Name: b.Name, Err: err}
		}
		injected[b.Name] = v
	}

	call := service.NewCall(w.ID, w.Service, method, args, injected)
	c.logger.Debug("dispatching call", "method", method, "call", w.ID)
	return m.Handler()(ctx, call)
}
