package service_test

import (
	"context"
	"testing"

	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/service"
)

type rpc struct {
	extension.Entrypoint
}

func newRPC(queue string) *rpc {
	e := &rpc{}
	e.Init(queue)
	return e
}

type store struct {
	extension.InjectionProvider
}

func newStore() *store {
	s := &store{}
	s.Init()
	return s
}

func noop(context.Context, *service.Call) (any, error) { return nil, nil }

// ── Definition ────────────────────────────────────────────────────────────────

func TestDefinition_OrderIsKept(t *testing.T) {
	def := service.New("orders").
		Attach("db", newStore()).
		Attach("cache", newStore()).
		Handle("create", noop).
		Handle("cancel", noop)

	attrs := def.Attributes()
	if len(attrs) != 2 || attrs[0].Name != "db" || attrs[1].Name != "cache" {
		t.Errorf("Attributes(): got %v, want [db cache]", attrs)
	}
	methods := def.Methods()
	if len(methods) != 2 || methods[0].Name() != "create" || methods[1].Name() != "cancel" {
		t.Errorf("Methods(): unexpected order")
	}
}

func TestDefinition_EntrypointDecoratorMakesOneDeclarationPerMethod(t *testing.T) {
	queue := service.Entrypoint(func() *rpc { return newRPC("orders") })

	def := service.New("orders").
		Handle("create", noop, queue).
		Handle("cancel", noop, queue)

	create := def.Method("create").Entrypoints()
	cancel := def.Method("cancel").Entrypoints()
	if len(create) != 1 || len(cancel) != 1 {
		t.Fatalf("got %d/%d entrypoints, want 1/1", len(create), len(cancel))
	}
	if create[0].Unit() == cancel[0].Unit() {
		t.Error("each decorated method should get its own declaration")
	}
	if !create[0].Equal(cancel[0]) {
		t.Error("declarations built from the same factory should compare equal")
	}
	if create[0].Role() != extension.RoleEntrypoint {
		t.Errorf("Role(): got %v, want entrypoint", create[0].Role())
	}
}

func TestDefinition_MultipleEntrypointsPerMethod(t *testing.T) {
	a := service.Entrypoint(func() *rpc { return newRPC("a") })
	b := service.Entrypoint(func() *rpc { return newRPC("b") })

	def := service.New("svc").Handle("meth", noop, a, b)
	if got := len(def.Method("meth").Entrypoints()); got != 2 {
		t.Errorf("got %d entrypoints, want 2", got)
	}
}

func TestDefinition_Lookup(t *testing.T) {
	def := service.New("svc").Attach("db", newStore()).Handle("meth", noop)

	if _, ok := def.Attribute("db"); !ok {
		t.Error("db should be declared")
	}
	if _, ok := def.Attribute("missing"); ok {
		t.Error("missing should not be declared")
	}
	if def.Method("missing") != nil {
		t.Error("Method() should return nil for unknown names")
	}
}

func TestDefinition_ProgrammerErrorsPanic(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"attribute twice", func() {
			service.New("svc").Attach("db", newStore()).Attach("db", newStore())
		}},
		{"method shadows attribute", func() {
			service.New("svc").Attach("db", newStore()).Handle("db", noop)
		}},
		{"nil handler", func() {
			service.New("svc").Handle("meth", nil)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			tt.build()
		})
	}
}

func TestDefinition_SealedIsReadOnly(t *testing.T) {
	def := service.New("svc")
	def.Seal()
	if !def.Sealed() {
		t.Fatal("Sealed() should be true")
	}
	defer func() {
		if recover() == nil {
			t.Error("Attach on a sealed definition should panic")
		}
	}()
	def.Attach("db", newStore())
}

// ── Call ──────────────────────────────────────────────────────────────────────

func TestCall_Dependencies(t *testing.T) {
	call := service.NewCall("id", "svc", "meth", []any{"x"}, map[string]any{"db": 42})

	if v, ok := service.Get[int](call, "db"); !ok || v != 42 {
		t.Errorf("Get[int]: got (%v, %v), want (42, true)", v, ok)
	}
	if _, ok := service.Get[string](call, "db"); ok {
		t.Error("Get with the wrong type should report false")
	}
	if _, ok := call.Dependency("missing"); ok {
		t.Error("unknown dependencies should not be found")
	}
	if call.Arg(0) != "x" || call.Arg(1) != nil {
		t.Error("Arg() should index positional arguments")
	}
}
