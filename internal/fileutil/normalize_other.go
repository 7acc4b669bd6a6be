//go:build !windows

package fileutil

import "path/filepath"

func normalize(p string) string {
	return filepath.Clean(p)
}
