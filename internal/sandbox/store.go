package sandbox

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// patternSnapshot is one immutable load of the allow file. The store swaps
// whole snapshots so a concurrent reader never observes a pattern list
// paired with a stale timestamp or error.
type patternSnapshot struct {
	patterns []string
	mtime    time.Time
	err      error
}

// PatternStore loads and caches the allowlist patterns from the control
// file inside the workspace root. It is safe for concurrent use.
//
// The file is line-oriented UTF-8: one glob pattern per line, with blank
// lines and "#" comments ignored. The store re-reads the file only when its
// modification time changes. The control file's own relative path is
// appended to every loaded set so the access rules themselves stay
// readable.
type PatternStore struct {
	root      *Root
	allowFile string // control file path relative to the root, e.g. ".mcp-allow"

	mu      sync.Mutex // serializes reloads
	current atomic.Pointer[patternSnapshot]
}

// NewPatternStore returns a store for the control file named allowFile
// (relative to root). No filesystem access happens until the first call to
// Current.
func NewPatternStore(root *Root, allowFile string) *PatternStore {
	s := &PatternStore{root: root, allowFile: allowFile}
	s.current.Store(&patternSnapshot{})
	return s
}

// AllowFile returns the control file's path relative to the root.
func (s *PatternStore) AllowFile() string { return s.allowFile }

// LastError returns the error recorded by the most recent load attempt, or
// nil if the last load succeeded.
func (s *PatternStore) LastError() error { return s.current.Load().err }

// Current returns the allow patterns in effect right now, reloading the
// control file if its modification time advanced since the last load.
//
// A missing control file is the default-deny state, not an error: the
// result is an empty set and a nil error, and the cached state is left
// untouched. A read failure returns the last successfully loaded set
// together with the error, so that callers fail closed instead of silently
// widening or narrowing access.
func (s *PatternStore) Current() ([]string, error) {
	path := filepath.Join(s.root.Dir(), s.allowFile)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.recordError(err)
	}

	if cached := s.current.Load(); len(cached.patterns) > 0 && info.ModTime().Equal(cached.mtime) {
		return cached.patterns, cached.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished the reload while we waited.
	if cached := s.current.Load(); len(cached.patterns) > 0 && info.ModTime().Equal(cached.mtime) {
		return cached.patterns, cached.err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s.recordError(err)
	}

	patterns := parsePatterns(string(data))
	patterns = append(patterns, s.allowFile)

	s.current.Store(&patternSnapshot{patterns: patterns, mtime: info.ModTime()})
	return patterns, nil
}

// recordError stores err as the current error state, keeping the last valid
// pattern set and its timestamp, and returns both. The caller must hold
// s.mu.
func (s *PatternStore) recordError(err error) ([]string, error) {
	log.Printf("error reading %s: %v", s.allowFile, err)
	prev := s.current.Load()
	s.current.Store(&patternSnapshot{patterns: prev.patterns, mtime: prev.mtime, err: err})
	return prev.patterns, err
}

// parsePatterns splits the allow file contents into patterns, trimming
// whitespace and dropping blank lines and "#" comments.
func parsePatterns(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
