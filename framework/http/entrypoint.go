package http

import (
	"context"
	"net/http"

	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/service"
)

// Entrypoint triggers a service method for every request matching its
// route.
type Entrypoint struct {
	extension.Entrypoint

	HTTPMethod string
	Path       string
	Server     *Server `extension:"server"`
}

// Route declares an HTTP entrypoint.
func Route(method, path string) *Entrypoint {
	e := &Entrypoint{HTTPMethod: method, Path: path, Server: NewServer()}
	e.Init(method, path)
	return e
}

// Handle is the decorator form of Route.
//
//	def.Handle("hello", hello, gohttp.Handle("GET", "/hello/{name}"))
func Handle(method, path string) service.Decorator {
	return service.Entrypoint(func() *Entrypoint { return Route(method, path) })
}

// Setup registers the route on the container's shared server.
func (e *Entrypoint) Setup(_ context.Context) error {
	d, ok := e.Container().(extension.Dispatcher)
	if !ok {
		return errors.Errorf("http entrypoint %q: container %T cannot dispatch calls", e.Method(), e.Container())
	}
	if e.Server.Router() == nil {
		return errors.Errorf("http entrypoint %q: server was not set up", e.Method())
	}
	e.Server.Router().Method(e.HTTPMethod, e.Path, e.serve(d))
	return nil
}

func (e *Entrypoint) serve(d extension.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := NewResponse(w)
		result, err := d.Invoke(r.Context(), e.Method(), NewRequest(r))
		if err != nil {
			res.Failure(err)
			return
		}
		if result == nil {
			res.NoContent()
			return
		}
		res.Success(result)
	}
}
