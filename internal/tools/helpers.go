package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/scoperoot/internal/safety"
	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult returns an mcp.CallToolResult that describes an error condition.
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("error: %s", msg))
}

// LogAudit records a tool invocation in the audit log, silently ignoring a
// nil logger. The entry's path is lifted out of params: the "path" argument
// for the read and write tools, the "prefix" argument for listing.
func LogAudit(audit *safety.AuditLogger, toolName string, params map[string]any, result string, start time.Time) {
	if audit == nil {
		return
	}
	path, _ := params["path"].(string)
	if path == "" {
		path, _ = params["prefix"].(string)
	}
	_ = audit.Log(safety.AuditEntry{
		Timestamp: start,
		Tool:      toolName,
		Path:      path,
		Params:    params,
		Result:    result,
		Duration:  time.Since(start),
	})
}
