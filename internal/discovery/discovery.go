// Package discovery finds the media files a batch run will transcribe.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"whisperwiz/internal/fileutil"
	"whisperwiz/internal/services"
)

// WorkItem is one input file selected for transcription.
type WorkItem struct {
	Path    string
	IsVideo bool
}

// Name returns the base file name, extension included.
func (w WorkItem) Name() string {
	return filepath.Base(w.Path)
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".flv":  true,
	".wmv":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".asf":  true,
}

// Classify reports whether name has a supported media extension and, if so,
// whether it needs transcoding to audio first. Matching ignores case.
func Classify(name string) (isVideo, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case audioExtensions[ext]:
		return false, true
	case videoExtensions[ext]:
		return true, true
	default:
		return false, false
	}
}

// Extensions returns the supported audio and video extensions, sorted.
func Extensions() (audio, video []string) {
	for ext := range audioExtensions {
		audio = append(audio, ext)
	}
	for ext := range videoExtensions {
		video = append(video, ext)
	}
	sort.Strings(audio)
	sort.Strings(video)
	return audio, video
}

// Discover walks root recursively and returns every regular file with a
// supported extension, sorted by absolute path. An empty tree yields an empty
// slice. A missing or unreadable root, or any walk error, is reported as a
// discovery failure.
func Discover(root string) ([]WorkItem, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrDiscovery, "discovery", "validate", "input directory not set", nil)
	}
	abs, err := fileutil.AbsPath(root)
	if err != nil {
		return nil, services.Wrap(services.ErrDiscovery, "discovery", "resolve", root, err)
	}
	info, err := os.Stat(fileutil.NormalizePath(abs))
	if err != nil {
		return nil, services.Wrap(services.ErrDiscovery, "discovery", "stat", abs, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrDiscovery, "discovery", "stat", abs, fmt.Errorf("not a directory"))
	}

	items := []WorkItem{}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		isVideo, ok := Classify(d.Name())
		if !ok {
			return nil
		}
		items = append(items, WorkItem{Path: path, IsVideo: isVideo})
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrDiscovery, "discovery", "walk", abs, err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}
