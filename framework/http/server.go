package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/juju/errors"

	"github.com/km-arc/go-services/framework/config"
	"github.com/km-arc/go-services/framework/extension"
	"github.com/km-arc/go-services/framework/routing"
)

// configured is implemented by containers that carry a configuration.
type configured interface {
	Config() *config.Config
}

// logged is implemented by containers that carry a logger.
type logged interface {
	Logger() *log.Logger
}

// Server is the shared extension behind every HTTP entrypoint of a
// container: one router and at most one listener per container.
type Server struct {
	extension.Extension

	router *routing.Router
	srv    *http.Server
	ln     net.Listener
}

// NewServer declares the shared server. Entrypoints own one each; binding
// collapses them into a single clone per container.
func NewServer() *Server {
	s := &Server{}
	s.Init(extension.SharedArg)
	return s
}

// Setup creates the container's router.
func (s *Server) Setup(_ context.Context) error {
	s.router = routing.New()
	return nil
}

// Start listens on config.HTTP.Addr, if set.
func (s *Server) Start(_ context.Context) error {
	addr := ""
	if c, ok := s.Container().(configured); ok && c.Config() != nil {
		addr = c.Config().HTTP.Addr
	}
	if addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Annotatef(err, "listening on %s", addr)
	}
	s.ln = ln
	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	logger := s.logger()
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "addr", ln.Addr().String(), "err", err)
		}
	}()
	logger.Info("http server listening", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the listener down, waiting for in-flight requests until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return errors.Trace(s.srv.Shutdown(ctx))
}

// Router returns the container's router (nil before Setup).
func (s *Server) Router() *routing.Router { return s.router }

// Handler serves the container's routes without a listener.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the address the server listens on, or "".
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) logger() *log.Logger {
	if c, ok := s.Container().(logged); ok && c.Logger() != nil {
		return c.Logger()
	}
	return log.Default()
}
