package service

// Call is a single invocation of a service method.
type Call struct {
	ID      string
	Service string
	Method  string
	Args    []any

	injected map[string]any
}

// NewCall builds a call carrying the values acquired from the service's
// injection providers, keyed by attribute name.
func NewCall(id, svc, method string, args []any, injected map[string]any) *Call {
	if injected == nil {
		injected = make(map[string]any)
	}
	return &Call{ID: id, Service: svc, Method: method, Args: args, injected: injected}
}

// Dependency returns the value injected for the attribute name.
func (c *Call) Dependency(name string) (any, bool) {
	v, ok := c.injected[name]
	return v, ok
}

// Arg returns the i-th positional argument, or nil.
func (c *Call) Arg(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Get returns the injected value for name asserted to T.
//
//	cfg, ok := service.Get[*config.Config](call, "config")
func Get[T any](c *Call, name string) (T, bool) {
	v, ok := c.injected[name]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
