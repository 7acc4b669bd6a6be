//go:build !windows

package media

import "os/exec"

func configureProcess(*exec.Cmd, RunnerOptions) {}
