package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// executable is replaced in tests.
var executable = os.Executable

// ResolveFFmpeg reports the ffmpeg binary video transcoding will execute.
//
// A configured value containing a path separator is used as is. A bare name
// is first looked up next to the whisperwiz executable (beside it, then in an
// "ffmpeg" subdirectory where the bootstrap downloader unpacks it) and then
// on PATH.
func ResolveFFmpeg(configured string) Status {
	name := strings.TrimSpace(configured)
	if name == "" {
		name = "ffmpeg"
	}
	st := Requirement{
		Name:        "FFmpeg",
		Command:     name,
		Description: "Transcodes video inputs to 16 kHz mono WAV",
	}.status()

	if strings.ContainsAny(name, "/"+string(filepath.Separator)) {
		if runnable(name) {
			return st.found(name)
		}
		return st.missing("binary %q not found or not executable", name)
	}
	if self, err := executable(); err == nil {
		for _, candidate := range sidecarCandidates(self, name) {
			if runnable(candidate) {
				return st.found(candidate)
			}
		}
	}
	if resolved, err := lookPath(name); err == nil {
		return st.found(resolved)
	}
	return st.missing("binary %q not found", name)
}

func sidecarCandidates(selfPath, name string) []string {
	if selfPath == "" {
		return nil
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	dir := filepath.Dir(selfPath)
	return []string{
		filepath.Join(dir, name),
		filepath.Join(dir, "ffmpeg", name),
	}
}

func runnable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
