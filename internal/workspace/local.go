// internal/workspace/local.go
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "groot/internal/errors"

	"golang.org/x/exp/mmap"
)

// DirName is the repository metadata directory.
const DirName = ".groot"

// FindRoot searches for the repository root by looking for the DirName
// directory in startDir and its parents.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", apperrors.NotFound(fmt.Sprintf("not a groot repository (or any parent): %s", startDir))
}

// Resolve maps a user supplied path, relative to cwd, onto the repository.
// It returns the slash separated path relative to root and the absolute
// path. Paths outside root or inside DirName are rejected.
func Resolve(root, cwd, arg string) (rel string, abs string, err error) {
	if arg == "" {
		return "", "", apperrors.ValidationError("path is required")
	}

	abs = arg
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, arg)
	}
	abs = filepath.Clean(abs)

	r, err := filepath.Rel(root, abs)
	if err != nil {
		return "", "", apperrors.ValidationError(fmt.Sprintf("%s is outside the repository", arg))
	}
	if r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", "", apperrors.ValidationError(fmt.Sprintf("%s is outside the repository", arg))
	}

	rel = filepath.ToSlash(r)
	if shouldIgnore(rel) {
		return "", "", apperrors.ValidationError(fmt.Sprintf("%s is inside the repository metadata", arg))
	}
	return rel, abs, nil
}

// shouldIgnore reports whether rel names repository metadata.
func shouldIgnore(rel string) bool {
	first, _, _ := strings.Cut(rel, "/")
	return first == DirName
}

// ReadFile reads a regular file through a read-only memory map.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NotFound(fmt.Sprintf("file not found: %s", path))
		}
		return nil, apperrors.IOFailure(fmt.Sprintf("reading %s", path), err)
	}
	if !info.Mode().IsRegular() {
		return nil, apperrors.ValidationError(fmt.Sprintf("%s is not a regular file", path))
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, apperrors.IOFailure(fmt.Sprintf("mapping %s", path), err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.IOFailure(fmt.Sprintf("reading %s", path), err)
	}
	return data, nil
}
