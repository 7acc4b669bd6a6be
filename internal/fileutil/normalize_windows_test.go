//go:build windows

package fileutil

import (
	"strings"
	"testing"
)

func TestNormalizePathAddsLongPrefix(t *testing.T) {
	long := `C:\` + strings.Repeat("a", 300) + `\clip.mp4`
	got := NormalizePath(long)
	if !strings.HasPrefix(got, `\\?\C:\`) {
		t.Fatalf("missing prefix: %q", got)
	}
	if NormalizePath(got) != got {
		t.Fatal("prefixed path should be left alone")
	}
}

func TestNormalizePathShortStaysPlain(t *testing.T) {
	got := NormalizePath(`C:\media\.\clip.mp4`)
	if got != `C:\media\clip.mp4` {
		t.Fatalf("got %q", got)
	}
}

func TestWithLongPrefixUNC(t *testing.T) {
	long := `\\server\share\` + strings.Repeat("b", 300)
	if got := withLongPrefix(long); !strings.HasPrefix(got, `\\?\UNC\server\share\`) {
		t.Fatalf("got %q", got)
	}
}
