// Package fileutil holds small filesystem helpers shared by the pipeline stages.
package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// maxPath is the classic Windows MAX_PATH limit.
const maxPath = 260

// NormalizePath cleans p for the host OS. Empty input stays empty. On Windows
// the path is made absolute and receives the `\\?\` prefix once it is longer
// than 260 characters; elsewhere only Clean is applied.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return normalize(p)
}

// AbsPath returns the absolute, cleaned form of p without any long-path prefix.
func AbsPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// EnsureDir creates dir and its parents with 0o755 permissions.
func EnsureDir(dir string) error {
	return os.MkdirAll(NormalizePath(dir), 0o755)
}

// RemoveQuietly deletes path, treating a missing file as success.
func RemoveQuietly(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
