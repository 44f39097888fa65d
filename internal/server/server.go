// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/tejzpr/moodlog-mcp/internal/journal"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/tools"
)

// ServerName is reported to MCP clients
const ServerName = "Moodlog"

// MCPServer wraps the mcp-go server with the journal tools
type MCPServer struct {
	mcpServer *server.MCPServer
	toolCtx   *tools.ToolContext
	logger    *logging.Logger
}

// NewMCPServer creates a new MCP server instance with every tool registered
func NewMCPServer(j *journal.Journal, version string, logger *logging.Logger) *MCPServer {
	if logger == nil {
		logger = logging.Nop()
	}
	if version == "" {
		version = "dev"
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	s := &MCPServer{
		mcpServer: mcpServer,
		toolCtx:   tools.NewToolContext(j, logger),
		logger:    logger.WithComponent("mcp"),
	}
	s.registerTools()
	return s
}

func (s *MCPServer) registerTools() {
	defs := tools.All(s.toolCtx)
	for _, def := range defs {
		s.mcpServer.AddTool(def.Tool, server.ToolHandlerFunc(def.Handler))
	}
	s.logger.Debugw("tools registered", "count", len(defs))
}

// ToolContext returns the context shared by the registered tools
func (s *MCPServer) ToolContext() *tools.ToolContext {
	return s.toolCtx
}

// ServeStdio serves MCP over stdin/stdout until the input closes
func (s *MCPServer) ServeStdio() error {
	s.logger.Infow("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

// Notify forwards a reminder to connected clients as a log message
// notification, so an agent can surface it to the user.
func (s *MCPServer) Notify(_ context.Context, slot, message string) error {
	s.mcpServer.SendNotificationToAllClients("notifications/message", map[string]any{
		"level":  "info",
		"logger": "moodlog.reminders",
		"data": map[string]any{
			"slot":    slot,
			"message": message,
		},
	})
	s.logger.Infow("reminder sent", "slot", slot)
	return nil
}
