package extension

import (
	"reflect"
	"sync"

	"github.com/juju/errors"
)

// Registry maps each container to the units bound to it. Writes only happen
// while a container is being bound; reads are safe for concurrent use.
type Registry struct {
	mu sync.RWMutex

	// container → bound units, in bind order (children before owners)
	units map[Container][]Unit

	// container → bound clones of shared declarations
	shared map[Container][]Unit

	// containers in first-bind order
	order []Container
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Bind.
func Default() *Registry { return defaultRegistry }

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		units:  make(map[Container][]Unit),
		shared: make(map[Container][]Unit),
	}
}

// ── Binding ───────────────────────────────────────────────────────────────────

// Bind binds a clone to name on container c in the process-wide registry.
func Bind(u Unit, name string, c Container) error {
	return defaultRegistry.Bind(u, name, c)
}

// Bind permanently binds the clone u as name on container c. Owned children
// are bound first, under their field names; a child cloned from a shared
// declaration is swapped for the container's existing clone of an equal
// declaration when there is one.
//
// Bind fails with *InvalidBindError when u is not a clone, is already bound,
// or c is nil.
func (r *Registry) Bind(u Unit, name string, c Container) error {
	if u == nil {
		return &InvalidUnitError{Type: "<nil>", Detail: "nil unit"}
	}
	b := u.base()
	switch {
	case !b.clone:
		return &InvalidBindError{Type: typeName(u), Name: name, Reason: NotAClone}
	case b.container != nil:
		return &InvalidBindError{Type: typeName(u), Name: name, Reason: AlreadyBound}
	case c == nil:
		return &InvalidBindError{Type: typeName(u), Name: name, Reason: NilContainer}
	}

	sv := reflect.ValueOf(u).Elem()
	for _, ch := range b.children {
		fv := sv.FieldByIndex(ch.index)
		owned := fv.Interface().(Unit)

		origin := owned.Origin()
		if origin != nil && origin.Shared() {
			if existing := r.sharedFor(c, origin); existing != nil {
				fv.Set(reflect.ValueOf(existing))
				continue
			}
		}
		if err := r.Bind(owned, ch.name, c); err != nil {
			return errors.Annotatef(err, "binding %q owned by %s", ch.name, typeName(u))
		}
		owned.base().parent = u
		if origin != nil && origin.Shared() {
			r.addShared(c, owned)
		}
	}

	b.name = name
	b.container = c
	r.add(c, u)
	return nil
}

func (r *Registry) add(c Container, u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[c]; !ok {
		r.order = append(r.order, c)
	}
	r.units[c] = append(r.units[c], u)
}

func (r *Registry) addShared(c Container, u Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared[c] = append(r.shared[c], u)
}

// sharedFor returns c's bound clone of a declaration equal to origin.
func (r *Registry) sharedFor(c Container, origin Unit) Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.shared[c] {
		if Equal(u.Origin(), origin) {
			return u
		}
	}
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// Filter selects bound units in Find.
type Filter func(Unit) bool

// ByRole matches units playing role.
func ByRole(role Role) Filter {
	return func(u Unit) bool { return u.Role() == role }
}

// ByName matches units bound as name.
func ByName(name string) Filter {
	return func(u Unit) bool { return u.Name() == name }
}

// ByType matches units of concrete type T.
func ByType[T Unit]() Filter {
	return func(u Unit) bool {
		_, ok := u.(T)
		return ok
	}
}

// Units returns every unit bound to c, in bind order.
func (r *Registry) Units(c Container) []Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Unit, len(r.units[c]))
	copy(out, r.units[c])
	return out
}

// Find returns the units bound to c that match every filter.
//
//	eps := reg.Find(c, extension.ByRole(extension.RoleEntrypoint), extension.ByName("meth1"))
func (r *Registry) Find(c Container, filters ...Filter) []Unit {
	var out []Unit
next:
	for _, u := range r.Units(c) {
		for _, f := range filters {
			if !f(u) {
				continue next
			}
		}
		out = append(out, u)
	}
	return out
}

// Lookup returns the first unit of type T bound to c as name. An empty name
// matches any name.
//
//	inj, ok := extension.Lookup[*SimpleInjection](extension.Default(), c, "")
func Lookup[T Unit](r *Registry, c Container, name string) (T, bool) {
	var zero T
	filters := []Filter{ByType[T]()}
	if name != "" {
		filters = append(filters, ByName(name))
	}
	found := r.Find(c, filters...)
	if len(found) == 0 {
		return zero, false
	}
	return found[0].(T), true
}

// Containers returns every container with bound units, in first-bind order.
func (r *Registry) Containers() []Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Container, len(r.order))
	copy(out, r.order)
	return out
}

// Forget drops everything recorded for c. Bound units keep their binding;
// only the lookup entries go away.
func (r *Registry) Forget(c Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.units, c)
	delete(r.shared, c)
	for i, o := range r.order {
		if o == c {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
