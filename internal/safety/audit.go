// Package safety provides the audit trail for workspace file operations.
//
// Every tool invocation is recorded as one JSON line: which tool ran, the
// workspace path it targeted, the remaining arguments, the outcome, and the
// wall time the access decision plus the filesystem work took. The log is
// the after-the-fact record of what crossed the access boundary, so it is
// written even for rejected requests.
package safety

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrNilWriter is returned by AuditLogger.Log when the logger was constructed
// with a nil writer.
var ErrNilWriter = errors.New("audit logger: writer is nil")

// AuditEntry records a single file-tool invocation. Path is the requested
// workspace-relative path (or listing prefix); Result is "ok" or the
// rejection reason as reported to the caller.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Tool      string         `json:"tool"`
	Path      string         `json:"path,omitempty"`
	Params    map[string]any `json:"params"`
	Result    string         `json:"result"`
	Duration  time.Duration  `json:"duration_ns"`
}

// AuditLogger writes AuditEntry records as newline-delimited JSON to an
// io.Writer, one line per decision so the log stays greppable. It is safe
// for concurrent use.
type AuditLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAuditLogger returns an AuditLogger that writes to w. If w is nil the
// returned logger is also nil; Log on a nil logger reports ErrNilWriter
// rather than panicking, so auditing can be left unconfigured.
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		return nil
	}
	return &AuditLogger{w: w}
}

// Log serialises entry as a single JSON line and appends it to the underlying
// writer. The line is marshalled outside the lock; only the write itself is
// serialised.
func (l *AuditLogger) Log(entry AuditEntry) error {
	if l == nil || l.w == nil {
		return ErrNilWriter
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	data = append(data, '\n')

	l.mu.Lock()
	_, err = l.w.Write(data)
	l.mu.Unlock()

	return err
}
