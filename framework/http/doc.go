// Package http provides HTTP entrypoints.
//
// # Entrypoints
//
// Handle decorates a service method with an HTTP route. Every container
// binds its own Entrypoint clone, and all HTTP entrypoints of one container
// share a single Server (a shared extension owning the chi router and the
// listener):
//
//	def := service.New("greeter").
//	    Handle("hello", hello, gohttp.Handle("GET", "/hello/{name}"))
//
// The method is invoked with the wrapped request as its first argument:
//
//	func hello(ctx context.Context, call *service.Call) (any, error) {
//	    req, _ := gohttp.RequestOf(call.Arg(0))
//	    return map[string]any{"greeting": "hello " + req.Param("name")}, nil
//	}
//
// # Responses
//
// Results are written as {"data": result}; a nil result answers 204.
// Returning an *Error picks the status:
//
//	return nil, gohttp.Errorf(http.StatusNotFound, "no such user")
//
// # Listening
//
// The Server listens on config.HTTP.Addr when the container starts; with an
// empty address nothing listens and the router is only reachable through
// Server.Handler (useful with httptest).
package http
