// Package archheuristic guesses an installer's CPU architecture from its
// download URL alone (spec.md §4.B). It is one of three architecture
// sources the rest of the engine reconciles — the other two being an
// inspector's own binary-format reading and a caller-supplied override.
package archheuristic

import (
	"regexp"

	"github.com/pkgsmith/wecore/internal/manifest"
)

var (
	arm64Pattern = regexp.MustCompile(`(?i)arm64|aarch64|aarch64ec`)
	armPattern   = regexp.MustCompile(`(?i)\barm\b|armv[567]|\baarch\b`)
	x64Pattern   = regexp.MustCompile(`(?i)x64|winx?64|_64|64-?bit|ia64|amd64|x86-64|x86_64`)
	x86Pattern   = regexp.MustCompile(`(?i)x86|win32|winx86|_86|32-?bit|ia32|i[3-6]86|\b[3-6]86\b`)
)

// Guess applies the five-step algorithm of §4.B to a URL string. It returns
// the accumulated architecture and true only when exactly one distinct
// architecture token was found; otherwise it returns ("", false).
func Guess(url string) (manifest.Architecture, bool) {
	found := map[manifest.Architecture]bool{}

	switch {
	case arm64Pattern.MatchString(url):
		found[manifest.ArchArm64] = true
	case armPattern.MatchString(url):
		found[manifest.ArchArm] = true
	}

	if x64Pattern.MatchString(url) {
		found[manifest.ArchX64] = true
	}
	if x86Pattern.MatchString(url) {
		found[manifest.ArchX86] = true
	}

	if len(found) != 1 {
		return "", false
	}
	for arch := range found {
		return arch, true
	}
	return "", false
}
