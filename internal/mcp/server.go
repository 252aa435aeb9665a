// ABOUTME: MCP server initialization and configuration for sectiondiff.
// ABOUTME: Sets up server with heading comparison and policy discovery tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/2389-research/sectiondiff/internal/compare"
)

// Server wraps the MCP server with a comparison service.
type Server struct {
	mcp      *gomcp.Server
	service  *compare.Service
	defaults compare.Options
	logger   *zap.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithDefaults sets the comparison options used when a tool call omits them.
func WithDefaults(opts compare.Options) ServerOption {
	return func(s *Server) {
		s.defaults = opts
	}
}

// WithLogger sets the logger for tool calls.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server exposing comparison tools.
func NewServer(service *compare.Service, opts ...ServerOption) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("comparison service is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "sectiondiff",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		service: service,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerCompareTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
