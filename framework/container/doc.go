// Package container hosts service definitions.
//
// # Overview
//
// A service definition declares its capability units once. Every container
// built from it gets its own clones of those declarations, bound to that
// container alone, so containers never share runtime state:
//
//	def := service.New("greeter").
//	    Attach("config", providers.NewConfig()).
//	    Handle("hello", hello, gohttp.Handle("GET", "/hello/{name}"))
//
//	c1, err := container.New(def)   // binds fresh clones
//	c2, err := container.New(def)   // binds another set
//
// # Container Lifecycle
//
//  1. Build: c, err := container.New(def) : clone + bind every declaration
//  2. Start: c.Start(ctx)                 : Setup all units, then Start them
//  3. Serve: entrypoints call c.Invoke(ctx, method, args...)
//  4. Stop:  c.Stop(ctx)                  : entrypoints first, then the rest
//
// # Binding
//
// Bind (or BindTo for a private registry) is the binder New runs. It clones
// each class-level attribute and each method entrypoint and binds the clone
// under the attribute or method name. Nested units are bound before their
// owners. Any failure is a configuration error: the registry entries for the
// container are dropped and New returns no container.
//
// # Lookup
//
// Bound units are recorded in the extension registry:
//
//	ep, ok := extension.Lookup[*gohttp.Entrypoint](c.Registry(), c, "hello")
package container
