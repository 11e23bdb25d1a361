package container_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/container"
	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/logging"
	"github.com/km-arc/go-services/framework/service"
)

// ── stub units ────────────────────────────────────────────────────────────────

type simpleExtension struct {
	extension.Extension
}

func newSimpleExtension() *simpleExtension {
	e := &simpleExtension{}
	e.Init()
	return e
}

type simpleInjection struct {
	extension.InjectionProvider
	Ext *simpleExtension
}

func newSimpleInjection() *simpleInjection {
	p := &simpleInjection{Ext: newSimpleExtension()}
	p.Init()
	return p
}

// Acquire hands each call the name of the container-private extension.
func (p *simpleInjection) Acquire(_ context.Context, w *extension.Worker) (any, error) {
	return p.Container().ID() + ":" + w.Method, nil
}

type simpleEntrypoint struct {
	extension.Entrypoint
}

func newSimpleEntrypoint() *simpleEntrypoint {
	e := &simpleEntrypoint{}
	e.Init()
	return e
}

type brokenExtension struct {
	extension.Extension
}

// recorder logs lifecycle calls into a shared journal.
type recorder struct {
	extension.Extension
	journal *[]string
	failOn  string
}

func newRecorder(journal *[]string, failOn string) *recorder {
	r := &recorder{journal: journal, failOn: failOn}
	r.Init()
	return r
}

func (r *recorder) note(phase string) error {
	*r.journal = append(*r.journal, phase+":"+r.Name())
	if phase == r.failOn {
		return errors.New(phase + " exploded")
	}
	return nil
}

func (r *recorder) Setup(context.Context) error { return r.note("setup") }
func (r *recorder) Start(context.Context) error { return r.note("start") }
func (r *recorder) Stop(context.Context) error  { return r.note("stop") }

type recordingEntrypoint struct {
	extension.Entrypoint
	journal *[]string
}

func newRecordingEntrypoint(journal *[]string) *recordingEntrypoint {
	e := &recordingEntrypoint{journal: journal}
	e.Init()
	return e
}

func (e *recordingEntrypoint) Start(context.Context) error {
	*e.journal = append(*e.journal, "start:"+e.Name())
	return nil
}

func (e *recordingEntrypoint) Stop(context.Context) error {
	*e.journal = append(*e.journal, "stop:"+e.Name())
	return nil
}

// ── suite ─────────────────────────────────────────────────────────────────────

type ContainerTestSuite struct {
	suite.Suite
	reg *extension.Registry
	cfg *config.Config
}

func (s *ContainerTestSuite) SetupTest() {
	s.reg = extension.NewRegistry()
	s.cfg = &config.Config{Service: config.ServiceConfig{Name: "test"}, Values: map[string]any{}}
}

func (s *ContainerTestSuite) newContainer(def *service.Definition) *container.Container {
	c, err := container.New(def,
		container.WithRegistry(s.reg),
		container.WithConfig(s.cfg),
		container.WithLogger(logging.Discard()))
	s.Require().NoError(err)
	return c
}

func simpleService() *service.Definition {
	simple := service.Entrypoint(newSimpleEntrypoint)
	noop := func(context.Context, *service.Call) (any, error) { return nil, nil }
	return service.New("service").
		Attach("inj", newSimpleInjection()).
		Handle("meth1", noop, simple).
		Handle("meth2", noop, simple)
}

func (s *ContainerTestSuite) TestEntrypointUniqueness() {
	def := simpleService()
	c1 := s.newContainer(def)
	c2 := s.newContainer(def)

	// entrypoint declarations are identical between containers
	d1 := c1.Definition().Method("meth1").Entrypoints()
	d2 := c2.Definition().Method("meth1").Entrypoints()
	s.Require().Len(d1, 1)
	s.True(d1[0].Equal(d2[0]))

	// entrypoint instances are different between containers
	c1Meth1, ok := extension.Lookup[*simpleEntrypoint](s.reg, c1, "meth1")
	s.Require().True(ok)
	c2Meth1, ok := extension.Lookup[*simpleEntrypoint](s.reg, c2, "meth1")
	s.Require().True(ok)
	s.False(extension.Equal(c1Meth1, c2Meth1))

	// entrypoint instances are different within a container
	c1Meth2, _ := extension.Lookup[*simpleEntrypoint](s.reg, c1, "meth2")
	s.False(extension.Equal(c1Meth1, c1Meth2))
	s.NotSame(c1Meth1, c1Meth2)
}

func (s *ContainerTestSuite) TestInjectionUniqueness() {
	def := simpleService()
	c1 := s.newContainer(def)
	c2 := s.newContainer(def)

	// injection declarations are identical between containers
	a1, _ := c1.Definition().Attribute("inj")
	a2, _ := c2.Definition().Attribute("inj")
	s.True(a1.Equal(a2))

	// injection instances are different between containers
	inj1, ok := extension.Lookup[*simpleInjection](s.reg, c1, "")
	s.Require().True(ok)
	inj2, ok := extension.Lookup[*simpleInjection](s.reg, c2, "")
	s.Require().True(ok)
	s.False(extension.Equal(inj1, inj2))
}

func (s *ContainerTestSuite) TestExtensionUniqueness() {
	def := simpleService()
	c1 := s.newContainer(def)
	c2 := s.newContainer(def)
	inj1, _ := extension.Lookup[*simpleInjection](s.reg, c1, "inj")
	inj2, _ := extension.Lookup[*simpleInjection](s.reg, c2, "inj")

	// extension declarations are identical between containers
	decl1, _ := c1.Definition().Attribute("inj")
	decl2, _ := c2.Definition().Attribute("inj")
	declExt := decl1.Unit().(*simpleInjection).Ext
	s.True(extension.Equal(declExt, decl2.Unit().(*simpleInjection).Ext))
	s.False(declExt.IsClone())
	s.False(declExt.IsBound())

	// extension instances are different between injections
	s.NotSame(inj1.Ext, inj2.Ext)
	s.False(extension.Equal(inj1.Ext, inj2.Ext))
	s.NotSame(declExt, inj1.Ext)
	s.NotSame(declExt, inj2.Ext)
	s.Equal(extension.Unit(declExt), inj2.Ext.Origin())
	s.Equal(c1, inj1.Ext.Container())
	s.Equal("Ext", inj1.Ext.Name())
}

func (s *ContainerTestSuite) TestBindingsFollowDefinition() {
	c := s.newContainer(simpleService())

	bindings := c.Bindings()
	s.Require().Len(bindings, 3)
	s.Equal("inj", bindings[0].Name)
	s.Empty(bindings[0].Method)
	s.Equal("meth1", bindings[1].Method)
	s.Equal("meth2", bindings[2].Method)
	for _, b := range bindings {
		s.True(b.Unit.IsBound())
		s.False(b.Declaration.Unit().IsBound(), "declarations are never bound")
	}
	// inj, its child, and two entrypoints
	s.Len(c.Units(), 4)
	s.True(c.Definition().Sealed())
}

func (s *ContainerTestSuite) TestConstructionFailsWithoutPartialContainer() {
	noop := func(context.Context, *service.Call) (any, error) { return nil, nil }
	def := service.New("broken").
		Attach("inj", newSimpleInjection()).
		Attach("broken", &brokenExtension{}).
		Handle("meth", noop)

	c, err := container.New(def, container.WithRegistry(s.reg), container.WithLogger(logging.Discard()))
	s.Nil(c)
	s.Require().Error(err)
	s.True(extension.IsConfigurationError(err))
	var initErr *extension.MissingInitError
	s.True(errors.As(err, &initErr))
	s.Contains(err.Error(), `"broken"`)
	s.Empty(s.reg.Containers(), "no partially bound container may stay registered")
}

func (s *ContainerTestSuite) TestFailureDoesNotTouchOtherContainers() {
	good := s.newContainer(simpleService())
	before := len(s.reg.Units(good))

	_, err := container.New(service.New("broken").Attach("broken", &brokenExtension{}),
		container.WithRegistry(s.reg), container.WithLogger(logging.Discard()))
	s.Error(err)
	s.Len(s.reg.Units(good), before)
}

func (s *ContainerTestSuite) TestLifecycleOrder() {
	var journal []string
	noop := func(context.Context, *service.Call) (any, error) { return nil, nil }
	def := service.New("svc").
		Attach("dep", newRecorder(&journal, "")).
		Handle("meth", noop, service.Entrypoint(func() *recordingEntrypoint {
			return newRecordingEntrypoint(&journal)
		}))
	c := s.newContainer(def)
	ctx := context.Background()

	s.Require().NoError(c.Start(ctx))
	s.True(c.Running())
	s.ErrorIs(c.Start(ctx), container.ErrAlreadyStarted)
	s.Require().NoError(c.Stop(ctx))
	s.False(c.Running())

	s.Equal([]string{"setup:dep", "start:dep", "start:meth", "stop:meth", "stop:dep"}, journal)
	s.Empty(s.reg.Units(c), "stopped containers leave the registry")
	s.NoError(c.Stop(ctx), "Stop is idempotent")
}

func (s *ContainerTestSuite) TestStartFailureStopsStartedUnits() {
	var journal []string
	def := service.New("svc").
		Attach("a", newRecorder(&journal, "")).
		Attach("b", newRecorder(&journal, "start"))
	c := s.newContainer(def)

	err := c.Start(context.Background())
	var lifecycleErr *container.LifecycleError
	s.Require().True(errors.As(err, &lifecycleErr))
	s.Equal("start", lifecycleErr.Phase)
	s.Equal("b", lifecycleErr.Name)
	s.False(c.Running())
	s.Equal([]string{"setup:a", "setup:b", "start:a", "start:b", "stop:a"}, journal)
	s.Empty(s.reg.Units(c))
}

func (s *ContainerTestSuite) TestInvoke() {
	def := service.New("svc").
		Attach("inj", newSimpleInjection()).
		Handle("echo", func(_ context.Context, call *service.Call) (any, error) {
			dep, _ := service.Get[string](call, "inj")
			return []any{dep, call.Arg(0), call.Method}, nil
		})
	c := s.newContainer(def)
	ctx := context.Background()

	_, err := c.Invoke(ctx, "echo")
	s.ErrorIs(err, container.ErrNotRunning)

	s.Require().NoError(c.Start(ctx))
	defer c.Stop(ctx)

	got, err := c.Invoke(ctx, "echo", "hi")
	s.Require().NoError(err)
	s.Equal([]any{c.ID() + ":echo", "hi", "echo"}, got)

	_, err = c.Invoke(ctx, "missing")
	var notFound *container.MethodNotFoundError
	s.True(errors.As(err, &notFound))
}

func (s *ContainerTestSuite) TestDefaultRegistry() {
	c, err := container.New(simpleService(), container.WithConfig(s.cfg), container.WithLogger(logging.Discard()))
	s.Require().NoError(err)
	defer c.Stop(context.Background())

	_, ok := extension.Lookup[*simpleInjection](extension.Default(), c, "inj")
	s.True(ok)
	s.Same(extension.Default(), c.Registry())
}

func TestContainerTestSuite(t *testing.T) {
	suite.Run(t, new(ContainerTestSuite))
}
