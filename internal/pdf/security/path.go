// Package security confines file paths supplied by tool callers.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideSandbox is returned for paths that escape the configured directory
var ErrOutsideSandbox = errors.New("path is outside configured directory")

// Sandbox resolves caller paths against one directory tree. Symlinks are
// followed before the containment check, so a link cannot point out of it.
type Sandbox struct {
	root     string
	realRoot string
}

// NewSandbox creates a sandbox rooted at directory. The directory does not
// need to exist yet.
func NewSandbox(directory string) (*Sandbox, error) {
	if directory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	root, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	realRoot, err := resolveExisting(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	return &Sandbox{root: root, realRoot: realRoot}, nil
}

// Root returns the absolute sandbox directory
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve returns the absolute form of path, reading relative paths from the
// sandbox root. The target may not exist yet, which lets callers name output
// files.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains a NUL byte")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	clean := filepath.Clean(path)

	real, err := resolveExisting(clean)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !within(clean, s.root) || !within(real, s.realRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, path)
	}
	return clean, nil
}

// Contains reports whether path resolves inside the sandbox
func (s *Sandbox) Contains(path string) bool {
	_, err := s.Resolve(path)
	return err == nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-attaches the missing tail.
func resolveExisting(path string) (string, error) {
	var tail []string
	current := path
	for {
		if _, err := os.Lstat(current); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path, nil
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}

	real, err := filepath.EvalSymlinks(current)
	if err != nil {
		return "", err
	}
	for i := len(tail) - 1; i >= 0; i-- {
		real = filepath.Join(real, tail[i])
	}
	return real, nil
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
