// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcp exposes hunts to AI agents over the Model Context Protocol.
package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentberlin/hounds"
	"github.com/agentberlin/hounds/internal/app"
)

const ServerName = "hounds"

// MCPServer wraps the core app and exposes it via MCP protocol
type MCPServer struct {
	server *mcp.Server
	app    *app.App
	logger *slog.Logger
}

// NewMCPServer creates a new MCP server instance for a started app
func NewMCPServer(a *app.App, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: hounds.Version,
	}, nil)

	s := &MCPServer{
		server: mcpServer,
		app:    a,
		logger: logger.With("component", "mcp"),
	}

	s.registerTools()

	return s
}

// GetServer returns the internal MCP server instance
func (s *MCPServer) GetServer() *mcp.Server {
	return s.server
}

// Handler returns the streamable HTTP transport of the server
func (s *MCPServer) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server {
			return s.server
		},
		nil,
	)
}

// RunStdio serves a single client over stdin and stdout until ctx is done
// or the client disconnects
func (s *MCPServer) RunStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
