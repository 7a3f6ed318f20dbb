// Package sandbox implements the workspace access boundary: root-confined
// path resolution, glob pattern matching, allowlist loading, and the single
// allow/deny decision every file operation calls into.
package sandbox

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an access request was rejected.
type ErrorKind int

const (
	// KindInvalidPath means the requested path was absolute or malformed.
	KindInvalidPath ErrorKind = iota
	// KindEscape means the path resolved outside the workspace root.
	KindEscape
	// KindDenied means the path matched a hard-deny pattern.
	KindDenied
	// KindNotWhitelisted means the file is not covered by the allow set.
	KindNotWhitelisted
	// KindConfigError means the allow file could not be read or parsed;
	// file access fails closed until it is fixed.
	KindConfigError
	// KindReadOnlyConfig means a write targeted the allow file itself.
	KindReadOnlyConfig
	// KindIOError means the filesystem failed while inspecting the target;
	// access fails closed rather than assuming the file does not exist.
	KindIOError
)

// String returns a short human-readable description of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidPath:
		return "absolute paths are not allowed"
	case KindEscape:
		return "path escapes the workspace root"
	case KindDenied:
		return "path is denied by built-in deny rules"
	case KindNotWhitelisted:
		return "path is not whitelisted in the allow file"
	case KindConfigError:
		return "allow file is unreadable"
	case KindReadOnlyConfig:
		return "the allow file is read-only; edit it on the filesystem directly"
	case KindIOError:
		return "filesystem error while checking the path"
	default:
		return "access denied"
	}
}

// AccessError is the rejection returned by Resolve and Authorize. It always
// carries the specific ErrorKind so callers can distinguish, for example, a
// broken allow file (which fails closed) from a file that simply is not
// listed.
type AccessError struct {
	Kind ErrorKind
	Path string // the path as supplied by the caller
	Err  error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *AccessError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err. The second return is false when
// err is not an AccessError.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// accessErr builds an AccessError for the given kind and requested path.
func accessErr(kind ErrorKind, path string, err error) *AccessError {
	return &AccessError{Kind: kind, Path: path, Err: err}
}
