package api

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

// Server wraps fasthttp.Server with a context-aware shutdown.
type Server struct {
	addr string
	srv  *fasthttp.Server
}

func NewServer(addr string, h *Handler) *Server {
	return &Server{
		addr: addr,
		srv: &fasthttp.Server{
			Handler:            h.Handle,
			Name:               "cheese-board",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			MaxRequestBodySize: 1 << 20,
		},
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}
