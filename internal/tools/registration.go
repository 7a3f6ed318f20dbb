// Package tools assembles the MCP tool surface: a Registration pairs each
// tool definition with its handler so the workspace tool set can be built
// and inspected before any server exists, and shared result/audit helpers
// keep the handlers uniform.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registration is one installable tool: its MCP definition plus the handler
// that serves it.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll installs regs on srv in order. A later registration with a
// duplicate tool name replaces the earlier one.
func RegisterAll(srv *server.MCPServer, regs []Registration) {
	for _, reg := range regs {
		srv.AddTool(reg.Tool, reg.Handler)
	}
}
