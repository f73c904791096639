// Package mcp exposes the task repository as Model Context Protocol tools
// served over stdio.
package mcp

import (
	"context"
	"io"
	"log"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tgienger/todo/internal/todo"
)

// ServerConfig holds the identity the server reports to clients
type ServerConfig struct {
	Name    string
	Version string
}

// Server wraps an MCP server whose tools operate on a Repository
type Server struct {
	repo      *todo.Repository
	logger    *slog.Logger
	mcpServer *mcpserver.MCPServer
}

// NewServer creates the server and registers the task tools
func NewServer(cfg ServerConfig, repo *todo.Repository, logger *slog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "mcp-todo"
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		repo:   repo,
		logger: logger,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio speaks MCP over in/out until ctx is done or in is closed
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(slogWriter{s.logger}, "", 0))
	s.logger.Info("mcp server listening on stdio")
	return stdio.Listen(ctx, in, out)
}

// slogWriter feeds the stdio transport's error log into slog
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Write(p []byte) (int, error) {
	w.logger.Error("mcp transport", "detail", string(p))
	return len(p), nil
}
