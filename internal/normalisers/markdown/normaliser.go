// Package markdown provides the line-level markdown handling shared by
// anchor resolution and the derived views: heading detection, heading
// text normalisation, top-level section splitting and inline formatting
// removal. It deliberately does not build an AST.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	headingLine   = regexp.MustCompile(`^(#{1,6})\s+(.*)`)
	headingMarker = regexp.MustCompile(`^#+\s*`)
	boldMarkup    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicMarkup  = regexp.MustCompile(`\*(.+?)\*`)
	inlineCode    = regexp.MustCompile("`(.+?)`")
)

// Heading is a parsed ATX heading line.
type Heading struct {
	// Level is the number of leading '#' characters (1-6).
	Level int

	// Text is the trimmed heading text.
	Text string
}

// ParseHeading reports whether line is an ATX heading and returns it.
func ParseHeading(line string) (Heading, bool) {
	m := headingLine.FindStringSubmatch(line)
	if m == nil {
		return Heading{}, false
	}
	return Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2])}, true
}

// NormaliseHeading strips leading heading markers and surrounding space,
// so "## Goals" and "Goals" compare equal.
func NormaliseHeading(s string) string {
	return strings.TrimSpace(headingMarker.ReplaceAllString(s, ""))
}

// Lines splits text on '\n'. A trailing newline yields a final empty line,
// which keeps Join(Lines(s)) == s.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

// Join is the inverse of Lines.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// Section is a run of lines starting at a top-level heading.
type Section struct {
	// Heading is the trimmed heading text; empty for the preamble.
	Heading string

	// Level is the heading level; 0 for the preamble.
	Level int

	// Lines holds the original lines, heading included.
	Lines []string
}

// TopLevelSections splits a document at its top-level headings.
// The document title (level 1) is ignored when choosing the top level,
// so a "# Title" followed by "## ..." sections splits at level 2.
// Lines before the first heading form a preamble section with an empty heading.
func TopLevelSections(text string) []Section {
	lines := Lines(text)

	top := 6
	for _, line := range lines {
		if h, ok := ParseHeading(line); ok && h.Level > 1 && h.Level < top {
			top = h.Level
		}
	}

	var sections []Section
	var current *Section
	for _, line := range lines {
		if h, ok := ParseHeading(line); ok && h.Level <= top {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Heading: h.Text, Level: h.Level, Lines: []string{line}}
			continue
		}
		if current == nil {
			current = &Section{Lines: []string{line}}
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// Title returns the first level-1 heading, or a title derived from the file name.
func Title(content, path string) string {
	for _, line := range Lines(content) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// StripInline removes bold, italic and inline-code markup.
func StripInline(s string) string {
	s = boldMarkup.ReplaceAllString(s, "$1")
	s = italicMarkup.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	return s
}
