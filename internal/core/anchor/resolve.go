// Package anchor locates semantic anchors in markdown text.
//
// An anchor is a heading path plus a verbatim snippet. Resolution is
// recomputed from the current text on every call and keeps no state,
// so it stays correct while the document is edited underneath it.
package anchor

import (
	"strings"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/normalisers/markdown"
)

// Resolve returns the 1-indexed inclusive line range that textContent
// occupies in text. The search is first restricted to the section under
// the last element of headingPath, then falls back to the whole document.
// The first occurrence wins in both passes. An empty (after trimming)
// textContent never resolves.
func Resolve(text string, headingPath []string, textContent string) (domain.Position, bool) {
	needle := strings.TrimSpace(textContent)
	if needle == "" {
		return domain.Position{}, false
	}

	lines := markdown.Lines(text)
	start, end := sectionRange(lines, headingPath)

	if pos, ok := findInRange(lines, start, end, needle); ok {
		return pos, true
	}
	return findInRange(lines, 0, len(lines), needle)
}

// ResolveAnchor is Resolve over a domain.Anchor.
func ResolveAnchor(text string, a domain.Anchor) (domain.Position, bool) {
	return Resolve(text, a.HeadingPath, a.TextContent)
}

// sectionRange returns the half-open 0-indexed line range of the section
// named by the last heading in path, or the whole document.
func sectionRange(lines []string, path []string) (int, int) {
	if len(path) == 0 {
		return 0, len(lines)
	}
	want := markdown.NormaliseHeading(path[len(path)-1])

	for i, line := range lines {
		h, ok := markdown.ParseHeading(line)
		if !ok || h.Text != want {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if next, ok := markdown.ParseHeading(lines[j]); ok && next.Level <= h.Level {
				return i, j
			}
		}
		return i, len(lines)
	}
	return 0, len(lines)
}

func findInRange(lines []string, start, end int, needle string) (domain.Position, bool) {
	haystack := markdown.Join(lines[start:end])
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return domain.Position{}, false
	}
	first := start + strings.Count(haystack[:idx], "\n") + 1
	last := first + strings.Count(needle, "\n")
	return domain.Position{StartLine: first, EndLine: last}, true
}
