//go:build windows

package fileutil

import (
	"path/filepath"
	"strings"
)

const longPathPrefix = `\\?\`

func normalize(p string) string {
	if strings.HasPrefix(p, longPathPrefix) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	p = filepath.Clean(p)
	return withLongPrefix(p)
}

func withLongPrefix(p string) string {
	if len(p) <= maxPath {
		return p
	}
	if strings.HasPrefix(p, `\\`) {
		// UNC share: \\server\share becomes \\?\UNC\server\share.
		return longPathPrefix + `UNC\` + strings.TrimPrefix(p, `\\`)
	}
	return longPathPrefix + p
}
