package sandbox

import "os"

// Op is the intended use of a requested path.
type Op int

const (
	// OpList traverses a path to enumerate files beneath it.
	OpList Op = iota
	// OpRead reads a file's contents.
	OpRead
	// OpWrite creates or overwrites a file.
	OpWrite
)

// DefaultDenyPatterns hard-denies a few common "oops" secrets even when the
// allowlist is too broad. Configuration may append to this set but never
// remove from it: a hard-deny match rejects the path before the allowlist
// is consulted, including against a permissive bare "**" allow pattern.
var DefaultDenyPatterns = []string{
	".env", "**/.env", "*.pem", "**/*.pem", "*id_rsa*", "**/*id_rsa*",
	".git", ".git/**", "**/.git/**", ".venv", ".venv/**", "**/.venv/**",
}

// Sandbox is the access-decision engine. It composes the workspace root,
// the hard-deny pattern set, and the allowlist store into the single yes/no
// decision applied uniformly by the list, read, and write operations.
type Sandbox struct {
	root  *Root
	deny  []string
	store *PatternStore
}

// New builds a Sandbox confined to root. allowFile names the control file
// relative to the root; extraDeny patterns are appended to
// DefaultDenyPatterns.
func New(root *Root, allowFile string, extraDeny []string) *Sandbox {
	if root == nil {
		panic("root must not be nil")
	}
	deny := make([]string, 0, len(DefaultDenyPatterns)+len(extraDeny))
	deny = append(deny, DefaultDenyPatterns...)
	deny = append(deny, extraDeny...)
	return &Sandbox{
		root:  root,
		deny:  deny,
		store: NewPatternStore(root, allowFile),
	}
}

// Root returns the workspace root.
func (s *Sandbox) Root() *Root { return s.root }

// Store returns the allowlist pattern store.
func (s *Sandbox) Store() *PatternStore { return s.store }

// DenyPatterns returns the hard-deny patterns in effect. The returned slice
// must not be modified.
func (s *Sandbox) DenyPatterns() []string { return s.deny }

// Authorize decides whether requested may be used for op and returns the
// resolved absolute path on success.
//
// The decision order is fixed: resolve and confine the path, reject
// hard-denied paths (unconditionally, before the allowlist can be
// consulted), reject writes to the control file, then gate existing regular
// files on the allowlist. Directories and paths that do not exist yet pass
// without an allowlist check: directories are always traversable so their
// contents can be filtered individually, and new files may be created under
// any non-denied path.
func (s *Sandbox) Authorize(requested string, op Op) (string, error) {
	abs, rel, err := s.root.Resolve(requested)
	if err != nil {
		return "", err
	}

	if MatchAny(rel, s.deny) {
		return "", accessErr(KindDenied, requested, nil)
	}

	if op == OpWrite && rel == s.store.AllowFile() {
		return "", accessErr(KindReadOnlyConfig, requested, nil)
	}

	info, statErr := os.Stat(abs)
	gate, err := needsAllowCheck(info, statErr)
	if err != nil {
		return "", accessErr(KindIOError, requested, err)
	}
	if !gate {
		// Not an existing regular file: nothing to gate yet.
		return abs, nil
	}

	patterns, err := s.store.Current()
	if err != nil {
		return "", accessErr(KindConfigError, requested, err)
	}
	if !MatchAny(rel, patterns) {
		return "", accessErr(KindNotWhitelisted, requested, nil)
	}
	return abs, nil
}

// needsAllowCheck classifies the stat result for a resolved target. Existing
// regular files are gated on the allowlist; missing targets and directories
// pass through. Any other stat failure is surfaced as an error so a flaky
// filesystem cannot be mistaken for "file does not exist yet".
func needsAllowCheck(info os.FileInfo, statErr error) (bool, error) {
	switch {
	case statErr == nil:
		return info.Mode().IsRegular(), nil
	case os.IsNotExist(statErr):
		return false, nil
	default:
		return false, statErr
	}
}
