package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesprial/scoperoot/internal/sandbox"
)

// Manager executes workspace file operations through the sandbox decision
// engine. It is safe for concurrent use.
type Manager struct {
	sb           *sandbox.Sandbox
	maxReadBytes int
}

// NewManager returns a Manager over sb. maxReadBytes is the read limit
// applied when a caller does not supply one.
func NewManager(sb *sandbox.Sandbox, maxReadBytes int) *Manager {
	if sb == nil {
		panic("sandbox must not be nil")
	}
	return &Manager{sb: sb, maxReadBytes: maxReadBytes}
}

// Compile-time check that Manager satisfies the FileManager interface.
var _ FileManager = (*Manager)(nil)

// List returns the sorted relative paths of every whitelisted file under
// prefix. Each candidate file is tested independently against the hard-deny
// set (excluded on match) and the live allow set (included only on match),
// so the listing never surfaces a path the single-file decision would
// reject. A degraded allow file fails the whole listing closed.
func (m *Manager) List(ctx context.Context, prefix string) ([]string, error) {
	base, err := m.sb.Authorize(prefix, sandbox.OpList)
	if err != nil {
		return nil, err
	}

	patterns, err := m.sb.Store().Current()
	if err != nil {
		return nil, &sandbox.AccessError{Kind: sandbox.KindConfigError, Path: prefix, Err: err}
	}

	root := m.sb.Root().Dir()
	out := []string{}
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if sandbox.MatchAny(rel, m.sb.DenyPatterns()) {
			return nil
		}
		if sandbox.MatchAny(rel, patterns) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	sort.Strings(out)
	return out, nil
}

// ReadText reads a whitelisted UTF-8 text file. maxBytes <= 0 selects the
// configured default. Invalid UTF-8 sequences are replaced with U+FFFD
// rather than rejected.
func (m *Manager) ReadText(ctx context.Context, path string, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		maxBytes = m.maxReadBytes
	}

	abs, err := m.sb.Authorize(path, sandbox.OpRead)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxBytes {
		return "", &TooLargeError{Path: path, Size: int64(len(data)), Limit: maxBytes}
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// WriteText writes content to a whitelisted path as UTF-8 text, creating
// missing parent directories. With create=false the target must already
// exist. Writes to the allow file itself are always rejected by the
// sandbox.
func (m *Manager) WriteText(ctx context.Context, path, content string, create bool) error {
	abs, err := m.sb.Authorize(path, sandbox.OpWrite)
	if err != nil {
		return err
	}

	if !create {
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%s does not exist and create=false", path)
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
