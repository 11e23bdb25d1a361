package extension

import (
	"context"
	"reflect"

	"github.com/juju/errors"
)

// ── Roles ─────────────────────────────────────────────────────────────────────

// Role is the runtime role a capability unit plays on a service.
type Role int

const (
	RoleExtension Role = iota
	RoleEntrypoint
	RoleInjection
)

func (r Role) String() string {
	switch r {
	case RoleEntrypoint:
		return "entrypoint"
	case RoleInjection:
		return "injection"
	default:
		return "extension"
	}
}

// ── Collaborators ─────────────────────────────────────────────────────────────

// Container is the opaque handle of the container that owns bound units.
// It is used as a registry key, so implementations must be comparable
// (pointer types are).
type Container interface {
	ID() string
}

// Dispatcher is a Container that can run service methods. Entrypoints use
// it to trigger the method they are bound to.
type Dispatcher interface {
	Container
	Invoke(ctx context.Context, method string, args ...any) (any, error)
}

// Worker describes the call an injection is acquired for.
type Worker struct {
	ID      string
	Service string
	Method  string
}

// ── Unit ──────────────────────────────────────────────────────────────────────

// Unit is implemented by every capability unit. Embed Extension, Entrypoint
// or InjectionProvider (by value) to satisfy it.
type Unit interface {
	Role() Role
	Name() string
	Container() Container
	Args() Args
	IsClone() bool
	IsBound() bool
	Shared() bool
	Origin() Unit
	Parent() Unit

	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	base() *Extension
}

// Injector is implemented by injection providers that supply a value to
// each service call.
type Injector interface {
	Unit
	Acquire(ctx context.Context, w *Worker) (any, error)
}

// ── Extension ─────────────────────────────────────────────────────────────────

// child locates an owned unit inside its owner's struct.
type child struct {
	name  string
	index []int
}

// Extension is the embeddable base of every capability unit.
//
// Constructors must call Init before returning the unit; a unit that skipped
// it fails the first time it is cloned.
type Extension struct {
	args        Args
	initialized bool
	clone       bool
	shared      bool

	origin    Unit
	parent    Unit
	name      string
	container Container
	children  []child

	// private to the instance; never copied to clones
	state map[string]any
}

// Init records the declared constructor arguments. Keyword arguments are
// passed with Kw; Kw("shared", true) marks the declaration as shared.
//
//	func NewQueue(name string) *Queue {
//	    q := &Queue{Queue: name}
//	    q.Init(name, extension.SharedArg)
//	    return q
//	}
func (e *Extension) Init(args ...any) {
	e.args = NewArgs(args...)
	e.shared = e.args.shared()
	e.initialized = true
	e.state = make(map[string]any)
}

func (e *Extension) base() *Extension { return e }

// Role returns RoleExtension. Entrypoint and InjectionProvider override it.
func (e *Extension) Role() Role { return RoleExtension }

// Name returns the attribute name the unit is bound as ("" until bound).
func (e *Extension) Name() string { return e.name }

// Container returns the owning container (nil until bound).
func (e *Extension) Container() Container { return e.container }

// Args returns the declared constructor arguments.
func (e *Extension) Args() Args { return e.args }

// IsClone reports whether the unit was produced by Clone.
func (e *Extension) IsClone() bool { return e.clone }

// IsBound reports whether the unit has been bound to a container.
func (e *Extension) IsBound() bool { return e.container != nil }

// Shared reports whether the declaration asks to be shared within a
// container. Clones are never shared themselves.
func (e *Extension) Shared() bool { return e.shared }

// Origin returns the declaration a clone was made from (nil for
// declarations).
func (e *Extension) Origin() Unit { return e.origin }

// Parent returns the unit owning this one, for bound children.
func (e *Extension) Parent() Unit { return e.parent }

// Setup is called once per container before Start. Allocate per-instance
// resources here.
func (e *Extension) Setup(_ context.Context) error { return nil }

// Start is called when the container starts.
func (e *Extension) Start(_ context.Context) error { return nil }

// Stop is called when the container stops.
func (e *Extension) Stop(_ context.Context) error { return nil }

// ── Private state ─────────────────────────────────────────────────────────────

// Get reads a value from the instance's private state. The lifecycle does
// not synchronise state access; units shared by concurrent calls must guard
// their own state.
func (e *Extension) Get(key string) (any, bool) {
	v, ok := e.state[key]
	return v, ok
}

// Set stores a value in the instance's private state. Declarations carry no
// state, so Set fails on anything that is not a clone.
func (e *Extension) Set(key string, value any) error {
	if !e.clone {
		return &InvalidStateError{Key: key}
	}
	e.state[key] = value
	return nil
}

// Delete removes a value from the instance's private state.
func (e *Extension) Delete(key string) {
	delete(e.state, key)
}

// ── Variants ──────────────────────────────────────────────────────────────────

// Entrypoint is the embeddable base of units that trigger a service method.
// One clone is bound per container for every declared entrypoint, named
// after the method it decorates.
type Entrypoint struct {
	Extension
}

// Role returns RoleEntrypoint.
func (e *Entrypoint) Role() Role { return RoleEntrypoint }

// Method returns the service method the entrypoint is bound to.
func (e *Entrypoint) Method() string { return e.name }

// InjectionProvider is the embeddable base of units that supply a value to
// service calls. Implement Injector to provide it.
type InjectionProvider struct {
	Extension
}

// Role returns RoleInjection.
func (p *InjectionProvider) Role() Role { return RoleInjection }

// ── Clone ─────────────────────────────────────────────────────────────────────

var unitType = reflect.TypeOf((*Unit)(nil)).Elem()

// the bases only hold bookkeeping; their fields are never children
var baseTypes = map[reflect.Type]bool{
	reflect.TypeOf(Extension{}):         true,
	reflect.TypeOf(Entrypoint{}):        true,
	reflect.TypeOf(InjectionProvider{}): true,
}

// Clone produces a fresh, unbound instance of u. The clone shares u's
// declared arguments and configuration fields, starts with empty state, is
// never shared, and owns fresh clones of every nested unit.
//
// Cloning a clone fails with *InvalidCloneError; cloning a unit whose
// constructor skipped Init fails with *MissingInitError.
func Clone(u Unit) (Unit, error) {
	if u == nil {
		return nil, &InvalidUnitError{Type: "<nil>", Detail: "nil unit"}
	}
	v := reflect.ValueOf(u)
	if v.Kind() != reflect.Pointer {
		return nil, &InvalidUnitError{Type: typeName(u), Detail: "not a pointer to a struct"}
	}
	if v.IsNil() {
		return nil, &InvalidUnitError{Type: typeName(u), Detail: "nil pointer"}
	}
	if v.Elem().Kind() != reflect.Struct {
		return nil, &InvalidUnitError{Type: typeName(u), Detail: "not a pointer to a struct"}
	}

	src := u.base()
	if !src.initialized {
		return nil, &MissingInitError{Type: typeName(u)}
	}
	if src.clone {
		return nil, &InvalidCloneError{Type: typeName(u)}
	}

	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	out := cp.Interface().(Unit)
	if out.base() == src {
		return nil, &InvalidUnitError{Type: typeName(u), Detail: "base extension embedded by pointer"}
	}

	*out.base() = Extension{
		args:        src.args,
		initialized: true,
		clone:       true,
		origin:      u,
		state:       make(map[string]any),
	}

	children, err := cloneChildren(cp.Elem(), nil)
	if err != nil {
		return nil, errors.Annotatef(err, "cloning %s", typeName(u))
	}
	out.base().children = children
	return out, nil
}

// CloneOf is Clone for a concrete unit type.
//
//	ep, err := extension.CloneOf(decl) // ep has decl's type
func CloneOf[T Unit](u T) (T, error) {
	var zero T
	out, err := Clone(u)
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// cloneChildren replaces every exported Unit field of sv (and of structs
// embedded in it) with a clone, returning where the children live. A unit
// held in an unexported field cannot be replaced, so it is rejected unless
// tagged extension:"-".
func cloneChildren(sv reflect.Value, prefix []int) ([]child, error) {
	var children []child
	t := sv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := sv.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if baseTypes[f.Type] {
				continue
			}
			nested, err := cloneChildren(fv, index)
			if err != nil {
				return nil, err
			}
			children = append(children, nested...)
			continue
		}
		if !f.Anonymous && !f.IsExported() && isUnitField(f.Type) && !fv.IsNil() {
			if _, skip := childName(f); !skip {
				return nil, &InvalidUnitError{
					Type:   t.String(),
					Detail: "unit field " + f.Name + ` is unexported; export it or tag it extension:"-"`,
				}
			}
			continue
		}
		if f.Anonymous || !f.IsExported() || !isUnitField(f.Type) || !fv.CanSet() {
			continue
		}
		name, skip := childName(f)
		if skip || fv.IsNil() {
			continue
		}

		owned, ok := fv.Interface().(Unit)
		if !ok {
			continue
		}
		cloned, err := Clone(owned)
		if err != nil {
			return nil, errors.Annotatef(err, "child %q", name)
		}
		fv.Set(reflect.ValueOf(cloned))
		children = append(children, child{name: name, index: index})
	}
	return children, nil
}

func isUnitField(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return t.Implements(unitType)
	}
	return false
}

// childName reads the `extension:"name"` tag; "-" opts a field out.
func childName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("extension")
	switch tag {
	case "-":
		return "", true
	case "":
		return f.Name, false
	}
	return tag, false
}

// ── Equality ──────────────────────────────────────────────────────────────────

// Equal reports whether two units are the same. Clones are only equal to
// themselves; declarations are equal when they have the same concrete type,
// the same shared flag and equal arguments.
func Equal(a, b Unit) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if a.IsClone() || b.IsClone() {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	ab, bb := a.base(), b.base()
	if !ab.initialized || !bb.initialized {
		return false
	}
	return ab.shared == bb.shared && ab.args.Equal(bb.args)
}

func typeName(u any) string {
	return reflect.TypeOf(u).String()
}
