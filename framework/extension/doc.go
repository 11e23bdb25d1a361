// Package extension implements the declare → clone → bind lifecycle of
// capability units: the extensions, entrypoints and injection providers a
// service definition is built from.
//
// # Declarations and clones
//
// A unit is declared once, when a service definition is written. That
// declaration is shared by every container built from the definition and
// never carries runtime state. When a container is constructed, each
// declaration is cloned and the clone is bound to the container:
//
//	type Mailer struct {
//	    extension.InjectionProvider
//	    Host string
//	}
//
//	func NewMailer(host string) *Mailer {
//	    m := &Mailer{Host: host}
//	    m.Init(host) // required: records the declared arguments
//	    return m
//	}
//
//	decl := extension.Declare(NewMailer("smtp.local"))
//	clone, err := decl.Clone()          // fresh, container-private instance
//	err = extension.Bind(clone, "mailer", c)
//
// Clones compare by identity, declarations by value (see Equal). A clone can
// never be cloned again, a declaration can never be bound, and a clone is
// bound exactly once.
//
// # Nested units
//
// Exported struct fields holding a Unit are owned children. Cloning the
// owner clones every child, and binding the owner binds the children first:
//
//	type Limiter struct {
//	    extension.InjectionProvider
//	    Bucket *RateLimit `extension:"bucket"`
//	}
//
// A child declared with Kw("shared", true) is bound once per container; every
// owner in that container receives the same bound clone.
//
// # Registry
//
// Bind records every bound unit in the process-wide Registry, keyed by the
// owning container, so dispatchers and tests can look units up by role, name
// or concrete type:
//
//	ep, ok := extension.Lookup[*SimpleEntrypoint](extension.Default(), c, "meth1")
package extension
