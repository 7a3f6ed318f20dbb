package workspace

import (
	"context"
	"time"

	"github.com/jamesprial/scoperoot/internal/safety"
	"github.com/jamesprial/scoperoot/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WorkspaceTools returns a slice of tool registrations for the workspace
// file MCP tools. Each tool is wired to the provided FileManager and
// AuditLogger.
func WorkspaceTools(mgr FileManager, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		toolListFiles(mgr, audit),
		toolReadText(mgr, audit),
		toolWriteText(mgr, audit),
	}
}

func toolListFiles(mgr FileManager, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool("list_files",
		mcp.WithDescription("List whitelisted files under a prefix, relative to the workspace root. Only files matching the allow file and no built-in deny rule are returned."),
		mcp.WithString("prefix",
			mcp.Description("Directory to list, relative to the workspace root. Defaults to the root itself."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		prefix := req.GetString("prefix", ".")
		params := map[string]any{"prefix": prefix}

		files, err := mgr.List(ctx, prefix)
		if err != nil {
			tools.LogAudit(audit, "list_files", params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, "list_files", params, "ok", start)
		return tools.JSONResult(files), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolReadText(mgr FileManager, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool("read_text",
		mcp.WithDescription("Read a whitelisted UTF-8 text file. The allow file itself is always readable so the access rules stay inspectable."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File to read, relative to the workspace root."),
		),
		mcp.WithNumber("max_bytes",
			mcp.Description("Maximum file size to read in bytes. Defaults to the server's configured limit."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		path := req.GetString("path", "")
		maxBytes := req.GetInt("max_bytes", 0)
		params := map[string]any{"path": path, "max_bytes": maxBytes}

		if path == "" {
			tools.LogAudit(audit, "read_text", params, "error: missing path", start)
			return tools.ErrorResult("path is required"), nil
		}

		content, err := mgr.ReadText(ctx, path, maxBytes)
		if err != nil {
			tools.LogAudit(audit, "read_text", params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, "read_text", params, "ok", start)
		return mcp.NewToolResultText(content), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolWriteText(mgr FileManager, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool("write_text",
		mcp.WithDescription("Write a whitelisted UTF-8 text file, creating parent directories as needed. The allow file itself can never be written."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File to write, relative to the workspace root."),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full text content to write."),
		),
		mcp.WithBoolean("create",
			mcp.Description("Create the file if it does not exist. Defaults to true."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		path := req.GetString("path", "")
		content := req.GetString("content", "")
		create := req.GetBool("create", true)
		params := map[string]any{"path": path, "create": create}

		if path == "" {
			tools.LogAudit(audit, "write_text", params, "error: missing path", start)
			return tools.ErrorResult("path is required"), nil
		}

		if err := mgr.WriteText(ctx, path, content, create); err != nil {
			tools.LogAudit(audit, "write_text", params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, "write_text", params, "ok", start)
		return mcp.NewToolResultText("ok"), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
