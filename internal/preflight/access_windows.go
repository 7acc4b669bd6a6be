//go:build windows

package preflight

import (
	"errors"
	"io"
	"os"
)

// checkAccess probes by listing the directory and, for write access,
// creating and removing a temporary file; ACLs make mode bits meaningless.
func checkAccess(path string, write bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = f.Readdirnames(1)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !write {
		return nil
	}
	probe, err := os.CreateTemp(path, ".whisperwiz-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
