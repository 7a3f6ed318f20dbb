package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Root is the canonical absolute workspace directory every request is
// confined to. It is established once at startup and never changes for the
// lifetime of the process.
type Root struct {
	dir string
}

// NewRoot canonicalizes dir (absolute, symlinks resolved) and returns it as
// the confinement boundary. The directory must exist.
func NewRoot(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %q: %w", dir, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root %q: %w", dir, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %q is not a directory", dir)
	}
	return &Root{dir: canonical}, nil
}

// Dir returns the canonical absolute root directory.
func (r *Root) Dir() string { return r.dir }

// Resolve turns a caller-supplied root-relative path into a canonical
// absolute path confined to the root, plus its forward-slash relative form.
// The relative form is the key used for all pattern matching; it is "." for
// the root itself.
//
// Absolute inputs are rejected before any filesystem access. The joined
// path is canonicalized — including symlink resolution, so a link inside
// the root that points outward is caught — before the confinement check;
// validating the textual path alone is not sufficient. Confinement is
// checked on path components, not raw string prefixes, so a sibling like
// "/work-evil" never passes for root "/work".
func (r *Root) Resolve(requested string) (abs, rel string, err error) {
	if filepath.IsAbs(requested) {
		return "", "", accessErr(KindInvalidPath, requested, nil)
	}

	resolved, err := canonicalize(filepath.Join(r.dir, requested))
	if err != nil {
		return "", "", accessErr(KindInvalidPath, requested, err)
	}

	if resolved != r.dir && !strings.HasPrefix(resolved, r.dir+string(filepath.Separator)) {
		return "", "", accessErr(KindEscape, requested, nil)
	}

	relPath, err := filepath.Rel(r.dir, resolved)
	if err != nil {
		return "", "", accessErr(KindEscape, requested, err)
	}
	return resolved, filepath.ToSlash(relPath), nil
}

// maxLinkHops bounds how many symlink indirections canonicalize follows
// while resolving a not-yet-existing tail, matching the limit EvalSymlinks
// applies to existing chains.
const maxLinkHops = 255

// canonicalize resolves symlinks in p, tolerating a not-yet-existing tail:
// dangling links are followed to the path their target would occupy, and
// the longest existing ancestor of a missing path is resolved before the
// remaining components are rejoined. p must already be absolute and
// cleaned.
//
// Dangling links must be chased here, not ignored: a link inside the root
// whose outside target does not exist yet decides where a future write
// lands, so it has to face the confinement check like any other symlink.
func canonicalize(p string) (string, error) {
	return resolveLinks(p, 0)
}

func resolveLinks(p string, hops int) (string, error) {
	if hops > maxLinkHops {
		return "", errors.New("too many levels of symbolic links")
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// p has a missing component, but the final component may still be a
	// dangling symlink whose target must be resolved.
	if fi, lerr := os.Lstat(p); lerr == nil && fi.Mode()&os.ModeSymlink != 0 {
		target, rerr := os.Readlink(p)
		if rerr != nil {
			return "", rerr
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(p), target)
		}
		return resolveLinks(target, hops+1)
	}

	parent := filepath.Dir(p)
	if parent == p {
		// Filesystem root; nothing left to resolve.
		return p, nil
	}
	resolvedParent, err := resolveLinks(parent, hops+1)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(p)), nil
}
