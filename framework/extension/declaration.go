package extension

// Declaration is the immutable, shared description of a capability unit
// attached to a service definition. It wraps a prototype unit that is never
// bound and never handed to a container; containers only ever see clones.
type Declaration struct {
	unit Unit
}

// Declare wraps u as a declaration. u must not be a clone.
func Declare(u Unit) Declaration {
	return Declaration{unit: u}
}

// IsZero reports whether d wraps no unit.
func (d Declaration) IsZero() bool { return d.unit == nil }

// Unit returns the prototype. Treat it as read-only: it cannot be bound and
// does not accept runtime state.
func (d Declaration) Unit() Unit { return d.unit }

// Role returns the declared unit's role.
func (d Declaration) Role() Role {
	if d.unit == nil {
		return RoleExtension
	}
	return d.unit.Role()
}

// Type returns the declared unit's concrete type name.
func (d Declaration) Type() string {
	if d.unit == nil {
		return "<nil>"
	}
	return typeName(d.unit)
}

// Args returns the declared constructor arguments.
func (d Declaration) Args() Args {
	if d.unit == nil {
		return Args{}
	}
	return d.unit.Args()
}

// Shared reports whether clones of d are shared within one container.
func (d Declaration) Shared() bool {
	return d.unit != nil && d.unit.Shared()
}

// Equal compares two declarations by value.
func (d Declaration) Equal(o Declaration) bool {
	return Equal(d.unit, o.unit)
}

// Clone produces a fresh instance ready to be bound.
func (d Declaration) Clone() (Unit, error) {
	return Clone(d.unit)
}

func (d Declaration) String() string {
	return d.Type() + d.Args().String()
}
