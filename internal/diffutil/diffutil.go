// Package diffutil renders the unified PKGBUILD diff shown to the user
// immediately after a recipe is fetched, comparing the newly fetched copy
// against whatever was cached from the last install.
package diffutil

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified renders a line-granular unified diff between the previously
// cached PKGBUILD (old) and the newly fetched one (new), with '+'/'-'/
// context markers, for the log sink.
func Unified(pkg, old, new string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(old),
		B:        difflib.SplitLines(new),
		FromFile: pkg + "/PKGBUILD (cached)",
		ToFile:   pkg + "/PKGBUILD (fetched)",
		Context:  3,
	}

	var buf strings.Builder
	if err := difflib.WriteUnifiedDiff(&buf, diff); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Lines splits a rendered unified diff into individual lines suitable for
// pushing one at a time into a logsink.Sink, dropping the trailing blank
// line WriteUnifiedDiff leaves after the last line.
func Lines(rendered string) []string {
	lines := strings.Split(rendered, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
