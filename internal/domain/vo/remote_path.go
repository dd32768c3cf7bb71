package vo

import (
	"errors"
	"path"
	"strings"
)

var ErrPathEscapesBase = errors.New("path escapes base directory")

// RemotePath is a slash-separated path on the remote host that is known to
// stay inside a base directory.
type RemotePath struct {
	base     string
	relative string
}

// ResolveRemotePath joins p onto base and verifies the result stays inside
// base. Backslashes are treated as separators so Windows-style input cannot
// smuggle "..\" segments past the check.
func ResolveRemotePath(base, p string) (RemotePath, error) {
	cleanBase := path.Clean("/" + strings.ReplaceAll(base, "\\", "/"))

	p = strings.ReplaceAll(p, "\\", "/")
	if strings.ContainsRune(p, 0) {
		return RemotePath{}, ErrPathEscapesBase
	}

	// Reject explicit parent segments before cleaning; "a/../b" would clean
	// to something harmless but is never a legitimate client path.
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return RemotePath{}, ErrPathEscapesBase
		}
	}

	joined := path.Join(cleanBase, p)
	if joined != cleanBase && !strings.HasPrefix(joined, strings.TrimSuffix(cleanBase, "/")+"/") {
		return RemotePath{}, ErrPathEscapesBase
	}

	rel := strings.TrimPrefix(strings.TrimPrefix(joined, cleanBase), "/")
	return RemotePath{base: cleanBase, relative: rel}, nil
}

// Full returns the absolute path on the remote host
func (rp RemotePath) Full() string {
	if rp.relative == "" {
		return rp.base
	}
	return path.Join(rp.base, rp.relative)
}

// Relative returns the path relative to the base, without a leading slash
func (rp RemotePath) Relative() string {
	return rp.relative
}

// Base returns the base directory
func (rp RemotePath) Base() string {
	return rp.base
}

// IsRoot returns true if the path is the base itself
func (rp RemotePath) IsRoot() bool {
	return rp.relative == ""
}

// Dir returns the parent directory, clamped to the base
func (rp RemotePath) Dir() RemotePath {
	if rp.relative == "" {
		return rp
	}
	dir := path.Dir(rp.relative)
	if dir == "." {
		dir = ""
	}
	return RemotePath{base: rp.base, relative: dir}
}

// Name returns the last element of the path
func (rp RemotePath) Name() string {
	if rp.relative == "" {
		return path.Base(rp.base)
	}
	return path.Base(rp.relative)
}

// Join appends elements, re-checking containment
func (rp RemotePath) Join(elem ...string) (RemotePath, error) {
	parts := append([]string{rp.relative}, elem...)
	return ResolveRemotePath(rp.base, path.Join(parts...))
}
