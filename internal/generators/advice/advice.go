// Package advice renders the per-section advice digest: the document's
// top-level sections reproduced in order, each followed by a blockquote
// of the pending suggestions that target it.
package advice

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/margin/internal/core/anchor"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/normalisers/markdown"
)

// Ensure Generator implements the interface.
var _ driven.ViewGenerator = (*Generator)(nil)

// Header is the first line of every generated digest.
const Header = "# Advice by section"

// WholeDocumentTitle heads the block of suggestions that match no section.
const WholeDocumentTitle = "Whole document"

// Generator renders the advice digest.
type Generator struct {
	lineRefs bool
}

// Option configures the generator.
type Option func(*Generator)

// WithLineRefs toggles resolved line references on each advice line.
func WithLineRefs(on bool) Option {
	return func(g *Generator) {
		g.lineRefs = on
	}
}

// New creates an advice generator.
func New(opts ...Option) *Generator {
	g := &Generator{lineRefs: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Kind returns the artifact kind.
func (g *Generator) Kind() domain.ArtifactKind {
	return domain.ArtifactAdvice
}

// Generate renders the digest.
func (g *Generator) Generate(_ context.Context, in *domain.ViewInput) (string, error) {
	if in == nil {
		return "", fmt.Errorf("view input is nil")
	}

	sections := markdown.TopLevelSections(in.Document)
	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		if s.Heading != "" {
			known[s.Heading] = true
		}
	}

	byHeading := make(map[string][]domain.Suggestion)
	var orphans []domain.Suggestion
	pending := 0
	for i := range in.Suggestions {
		s := in.Suggestions[i]
		if !s.IsPending() {
			continue
		}
		pending++
		key := ""
		if len(s.Anchor.HeadingPath) > 0 {
			key = markdown.NormaliseHeading(s.Anchor.HeadingPath[0])
		}
		if key == "" || !known[key] {
			orphans = append(orphans, s)
			continue
		}
		byHeading[key] = append(byHeading[key], s)
	}

	var b strings.Builder
	b.WriteString(Header + "\n\n")
	fmt.Fprintf(&b, "> Source: %s · %d pending\n\n---\n\n", in.SourceFile, pending)

	for _, sec := range sections {
		body := strings.TrimRight(markdown.Join(sec.Lines), "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		b.WriteString(body + "\n\n")

		items := byHeading[sec.Heading]
		if sec.Heading == "" || len(items) == 0 {
			continue
		}
		g.writeBlock(&b, "Advice", items, in.Document)
		// One block per heading even if the heading repeats.
		delete(byHeading, sec.Heading)
	}

	if len(orphans) > 0 {
		b.WriteString("---\n\n")
		g.writeBlock(&b, WholeDocumentTitle, orphans, in.Document)
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func (g *Generator) writeBlock(b *strings.Builder, title string, items []domain.Suggestion, doc string) {
	fmt.Fprintf(b, "> **%s (%d)**\n>\n", title, len(items))
	for i := range items {
		b.WriteString("> - " + g.line(&items[i], doc) + "\n")
	}
	b.WriteString("\n")
}

func (g *Generator) line(s *domain.Suggestion, doc string) string {
	var parts []string
	if s.Category != "" {
		parts = append(parts, "**["+s.Category.Label()+"]**")
	}
	if g.lineRefs {
		if pos, ok := anchor.ResolveAnchor(doc, s.Anchor); ok {
			if pos.StartLine == pos.EndLine {
				parts = append(parts, fmt.Sprintf("(L%d)", pos.StartLine))
			} else {
				parts = append(parts, fmt.Sprintf("(L%d-%d)", pos.StartLine, pos.EndLine))
			}
		}
	}
	text := strings.TrimSpace(s.Reasoning)
	if text == "" {
		text = firstLine(s.OriginalText)
	}
	parts = append(parts, strings.ReplaceAll(text, "\n", " "))
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

// IsGenerated reports whether content looks like a digest this package wrote.
// Content without the header is treated as hand-written.
func IsGenerated(content string) bool {
	return strings.HasPrefix(content, Header+"\n")
}
