// Package diff renders unified-diff text in process. The engine normally
// delegates diffing to git; this package is the degrade path used when the
// diff subprocess itself fails, so the user still sees what changed.
package diff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// Unified generates unified-diff formatted output comparing old and new
// content. Returns the empty string when the contents are identical.
// Output beyond 10,000 lines is truncated with a marker.
func Unified(oldContent, newContent []byte, oldLabel, newLabel string) string {
	if bytes.Equal(oldContent, newContent) {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(oldContent), string(newContent), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", oldLabel)
	fmt.Fprintf(&buf, "+++ %s\n", newLabel)

	oldLines := strings.Count(string(oldContent), "\n") + 1
	newLines := strings.Count(string(newContent), "\n") + 1
	fmt.Fprintf(&buf, "@@ -1,%d +1,%d @@\n", oldLines, newLines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	result := buf.String()
	lines := strings.Split(result, "\n")
	if len(lines) > maxDiffLines {
		return strings.Join(lines[:maxDiffLines], "\n") + "\n" + truncateMessage + "\n"
	}
	return result
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
