package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServer wraps an http.Server with graceful shutdown.
type HTTPServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewHTTPServer creates a server listening on addr. The write timeout leaves
// room for the slowest completion call.
func NewHTTPServer(addr string, s *Server) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      s.Router(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: max(s.RequestTimeout, s.RewriteTimeout) + 10*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: s.logger,
	}
}

// Addr returns the configured listen address.
func (h *HTTPServer) Addr() string { return h.server.Addr }

// Start serves until Stop is called or the listener fails.
func (h *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.server.Addr, err)
	}
	return h.Serve(ln)
}

// Serve accepts connections on ln.
func (h *HTTPServer) Serve(ln net.Listener) error {
	h.logger.Info("starting HTTP server", "address", ln.Addr().String())
	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server with a 30-second timeout.
func (h *HTTPServer) Stop() error {
	h.logger.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return h.server.Shutdown(ctx)
}
