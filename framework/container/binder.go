package container

import (
	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/service"
)

// Binding is one declaration of a service definition and the clone bound
// for it on a container.
type Binding struct {
	// Name the clone is bound as: the attribute name, or the method name
	// for entrypoints.
	Name string

	// Method is set for entrypoint bindings.
	Method string

	Declaration extension.Declaration
	Unit        extension.Unit
}

// Bind clones every declaration of def and binds the clones to c in the
// process-wide registry.
func Bind(def *service.Definition, c extension.Container) ([]Binding, error) {
	return BindTo(extension.Default(), def, c)
}

// BindTo binds def to c, recording the clones in reg: one clone per
// class-level attribute and one per declared entrypoint. Declarations are
// only read.
//
// On failure everything already recorded for c is forgotten and the
// configuration error is returned; there is no partially bound container.
func BindTo(reg *extension.Registry, def *service.Definition, c extension.Container) ([]Binding, error) {
	var bindings []Binding

	bind := func(name, method string, decl extension.Declaration) error {
		u, err := decl.Clone()
		if err != nil {
			return errors.Annotatef(err, "cloning %q (%s)", name, decl.Type())
		}
		if err := reg.Bind(u, name, c); err != nil {
			return errors.Annotatef(err, "binding %q (%s)", name, decl.Type())
		}
		bindings = append(bindings, Binding{Name: name, Method: method, Declaration: decl, Unit: u})
		return nil
	}

	for _, attr := range def.Attributes() {
		if err := bind(attr.Name, "", attr.Declaration); err != nil {
			reg.Forget(c)
			return nil, err
		}
	}
	for _, m := range def.Methods() {
		for _, decl := range m.Entrypoints() {
			if err := bind(m.Name(), m.Name(), decl); err != nil {
				reg.Forget(c)
				return nil, err
			}
		}
	}
	return bindings, nil
}
