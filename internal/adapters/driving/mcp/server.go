package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const instructions = "Tools answer questions about Korean listed companies from their " +
	"disclosure reports. Resolve company mentions with resolve_company before searching " +
	"when a name is abbreviated or misspelled."

// Server serves the storm tools and resources to MCP clients.
type Server struct {
	ports           *Ports
	server          *mcp.Server
	shutdownTimeout time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithShutdownTimeout bounds how long the HTTP transport drains on cancel.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer registers tools and resources for the given ports.
func NewServer(ports *Ports, opts ...ServerOption) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:           ports,
		shutdownTimeout: 5 * time.Second,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "storm", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Serve blocks until ctx is cancelled. An empty addr selects stdio,
// anything else is a listen address for the streamable HTTP transport.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		logger.Debug("MCP server on stdio")
		return s.server.Run(ctx, &mcp.StdioTransport{})
	}
	return s.serveHTTP(ctx, addr)
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Debug("MCP server on http://%s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutting down MCP server: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
