// Package workspace implements the list, read, and write file operations
// exposed as MCP tools, each gated by the sandbox access decision.
package workspace

import (
	"context"
	"fmt"
)

// FileManager is the operation surface the MCP tool handlers call into.
type FileManager interface {
	// List returns the sorted relative paths of every accessible file
	// under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// ReadText reads a whitelisted UTF-8 text file, enforcing maxBytes
	// (<= 0 selects the configured default).
	ReadText(ctx context.Context, path string, maxBytes int) (string, error)
	// WriteText writes content to a whitelisted path. With create=false
	// the target must already exist.
	WriteText(ctx context.Context, path, content string, create bool) error
}

// TooLargeError is returned by ReadText when a file exceeds the byte limit.
// It is a size problem, not an access rejection.
type TooLargeError struct {
	Path  string
	Size  int64
	Limit int
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s is too large (%d bytes, limit %d); raise max_bytes if needed", e.Path, e.Size, e.Limit)
}
