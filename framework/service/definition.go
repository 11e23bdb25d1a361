// Package service describes services: the class-level capability units they
// declare and the methods their entrypoints trigger.
//
//	simple := service.Entrypoint(NewSimpleEntrypoint)
//
//	def := service.New("greeter").
//	    Attach("inj", NewSimpleInjection()).
//	    Handle("meth1", meth1, simple).
//	    Handle("meth2", meth2, simple)
//
// A Definition is read-only once a container has been built from it.
package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/km-arc/go-services/framework/extension"
)

// Handler implements a service method.
type Handler func(ctx context.Context, call *Call) (any, error)

// Attribute is a class-level declaration and the name it is bound as.
type Attribute struct {
	Name        string
	Declaration extension.Declaration
}

// ── Method ────────────────────────────────────────────────────────────────────

// Method is a service method and the entrypoints declared on it.
type Method struct {
	name        string
	handler     Handler
	entrypoints []extension.Declaration
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Handler returns the method implementation.
func (m *Method) Handler() Handler { return m.handler }

// Entrypoints returns the entrypoint declarations attached to the method.
func (m *Method) Entrypoints() []extension.Declaration {
	out := make([]extension.Declaration, len(m.entrypoints))
	copy(out, m.entrypoints)
	return out
}

// Decorator attaches declarations to a method.
type Decorator func(m *Method)

// Entrypoint turns an entrypoint constructor into a Decorator. Every method
// it decorates gets its own declaration, built from a fresh factory call.
//
//	rpc := service.Entrypoint(func() *RPC { return NewRPC("orders") })
//	def.Handle("create", create, rpc).Handle("cancel", cancel, rpc)
func Entrypoint[T extension.Unit](factory func() T) Decorator {
	return func(m *Method) {
		m.entrypoints = append(m.entrypoints, extension.Declare(factory()))
	}
}

// ── Definition ────────────────────────────────────────────────────────────────

// Definition is the declared shape of a service.
type Definition struct {
	name    string
	attrs   []Attribute
	methods []*Method
	sealed  atomic.Bool
}

// New starts a service definition.
func New(name string) *Definition {
	return &Definition{name: name}
}

// Name returns the service name.
func (d *Definition) Name() string { return d.name }

// Attach declares a class-level extension or injection provider bound as
// name in every container.
func (d *Definition) Attach(name string, u extension.Unit) *Definition {
	d.mustBeOpen()
	if d.has(name) {
		panic(fmt.Sprintf("service: [%s] declares %q twice", d.name, name))
	}
	d.attrs = append(d.attrs, Attribute{Name: name, Declaration: extension.Declare(u)})
	return d
}

// Handle declares a service method and applies its decorators in order.
// A nil handler panics.
func (d *Definition) Handle(name string, h Handler, decorators ...Decorator) *Definition {
	d.mustBeOpen()
	if d.has(name) {
		panic(fmt.Sprintf("service: [%s] declares %q twice", d.name, name))
	}
	if h == nil {
		panic(fmt.Sprintf("service: [%s] method %q has no handler", d.name, name))
	}
	m := &Method{name: name, handler: h}
	for _, dec := range decorators {
		dec(m)
	}
	d.methods = append(d.methods, m)
	return d
}

// Attributes returns the class-level declarations in declaration order.
func (d *Definition) Attributes() []Attribute {
	out := make([]Attribute, len(d.attrs))
	copy(out, d.attrs)
	return out
}

// Attribute returns the class-level declaration named name.
func (d *Definition) Attribute(name string) (extension.Declaration, bool) {
	for _, a := range d.attrs {
		if a.Name == name {
			return a.Declaration, true
		}
	}
	return extension.Declaration{}, false
}

// Methods returns the declared methods in declaration order.
func (d *Definition) Methods() []*Method {
	out := make([]*Method, len(d.methods))
	copy(out, d.methods)
	return out
}

// Method returns the method named name, or nil.
func (d *Definition) Method(name string) *Method {
	for _, m := range d.methods {
		if m.name == name {
			return m
		}
	}
	return nil
}

// Seal freezes the definition. Containers seal the definition they are
// built from; further Attach or Handle calls panic.
func (d *Definition) Seal() { d.sealed.Store(true) }

// Sealed reports whether the definition is frozen.
func (d *Definition) Sealed() bool { return d.sealed.Load() }

func (d *Definition) mustBeOpen() {
	if d.sealed.Load() {
		panic(fmt.Sprintf("service: [%s] is in use by a container and can no longer change", d.name))
	}
}

func (d *Definition) has(name string) bool {
	if _, ok := d.Attribute(name); ok {
		return true
	}
	return d.Method(name) != nil
}
