package stream

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissingParam = errors.New("missing file parameter")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("file not found")
)

// Resolver maps logical paths from stream requests to files on disk.
// Nothing outside Root (or FallbackDir, for the base-name fallback) is
// ever returned.
type Resolver struct {
	Root        string
	FallbackDir string
}

func NewResolver(root, fallbackDir string) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	absFallback := ""
	if fallbackDir != "" {
		absFallback, err = filepath.Abs(fallbackDir)
		if err != nil {
			return nil, fmt.Errorf("resolve fallback dir: %w", err)
		}
	}
	return &Resolver{Root: absRoot, FallbackDir: absFallback}, nil
}

// Resolve returns the on-disk path for a logical path, or one of
// ErrMissingParam, ErrForbidden, ErrNotFound. The lexical prefix check
// blocks ../ traversal; the symlink canonicalization after it blocks
// escapes through links planted inside the root.
func (r *Resolver) Resolve(logical string) (string, error) {
	if logical == "" {
		return "", ErrMissingParam
	}

	candidate := filepath.Join(r.Root, filepath.FromSlash(logical))
	if !within(r.Root, candidate) {
		return "", ErrForbidden
	}

	if fileExists(candidate) {
		return r.canonicalize(candidate, r.Root)
	}

	// fallback: same base name inside the secondary content directory
	if r.FallbackDir != "" {
		fallback := filepath.Join(r.FallbackDir, filepath.Base(candidate))
		if fileExists(fallback) {
			return r.canonicalize(fallback, r.FallbackDir)
		}
	}

	return "", ErrNotFound
}

// canonicalize resolves symlinks and re-checks containment against the
// (equally canonicalized) allowed directory.
func (r *Resolver) canonicalize(p, allowedDir string) (string, error) {
	canon, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", ErrNotFound
	}
	canonDir, err := filepath.EvalSymlinks(allowedDir)
	if err != nil {
		return "", ErrNotFound
	}
	if !within(canonDir, canon) {
		return "", ErrForbidden
	}
	return canon, nil
}

// within reports whether child is dir itself or sits beneath it. The
// separator-aware comparison keeps /media-evil from passing as inside
// /media.
func within(dir, child string) bool {
	if child == dir {
		return true
	}
	return strings.HasPrefix(child, dir+string(os.PathSeparator))
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
