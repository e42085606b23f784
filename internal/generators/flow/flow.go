// Package flow extracts ordered-list procedures from a document and
// renders them as a Mermaid flowchart.
package flow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/normalisers/markdown"
)

// Ensure Generator implements the interface.
var _ driven.ViewGenerator = (*Generator)(nil)

const defaultMinItems = 2

var (
	orderedItem = regexp.MustCompile(`^\d+\.\s+(.*)`)
	subItem     = regexp.MustCompile(`^\s+[-*]\s+(.*)`)
	branch      = regexp.MustCompile(`^(.+?)(?::\s+|：\s*)(.+)$`)
)

// Step is one ordered-list item with its indented sub-bullets.
type Step struct {
	Text     string
	Branches []string
}

// Block is a contiguous ordered list under a heading.
type Block struct {
	Heading string
	Steps   []Step
}

// Generator renders the flow diagram.
type Generator struct {
	minItems int
}

// Option configures the generator.
type Option func(*Generator)

// WithMinItems sets how many items an ordered list needs to count as a flow.
func WithMinItems(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.minItems = n
		}
	}
}

// New creates a flow generator.
func New(opts ...Option) *Generator {
	g := &Generator{minItems: defaultMinItems}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Kind returns the artifact kind.
func (g *Generator) Kind() domain.ArtifactKind {
	return domain.ArtifactFlow
}

// Generate renders the diagram. A document with no qualifying list yields "".
func (g *Generator) Generate(_ context.Context, in *domain.ViewInput) (string, error) {
	if in == nil {
		return "", fmt.Errorf("view input is nil")
	}
	return Render(Extract(in.Document, g.minItems)), nil
}

// Extract finds ordered-list blocks of at least minItems items.
// A heading, a blank line or any other non-list line closes the current block.
func Extract(text string, minItems int) []Block {
	if minItems <= 0 {
		minItems = defaultMinItems
	}

	var blocks []Block
	heading := ""
	var cur *Block

	flush := func() {
		if cur != nil && len(cur.Steps) >= minItems {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}

	for _, line := range markdown.Lines(text) {
		if h, ok := markdown.ParseHeading(line); ok {
			flush()
			heading = h.Text
			continue
		}
		if m := orderedItem.FindStringSubmatch(line); m != nil {
			if cur == nil {
				cur = &Block{Heading: heading}
			}
			cur.Steps = append(cur.Steps, Step{Text: strings.TrimSpace(m[1])})
			continue
		}
		if m := subItem.FindStringSubmatch(line); m != nil && cur != nil {
			last := &cur.Steps[len(cur.Steps)-1]
			last.Branches = append(last.Branches, strings.TrimSpace(m[1]))
			continue
		}
		flush()
	}
	flush()
	return blocks
}

// Render emits a Mermaid flowchart. Blocks become subgraphs only when
// there is more than one.
func Render(blocks []Block) string {
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	clusters := len(blocks) > 1
	for i, blk := range blocks {
		indent := "    "
		if clusters {
			title := blk.Heading
			if title == "" {
				title = fmt.Sprintf("Flow %d", i+1)
			}
			fmt.Fprintf(&b, "    subgraph F%d[\"%s\"]\n", i, sanitize(title))
			indent = "        "
		}
		for n, step := range blk.Steps {
			id := fmt.Sprintf("F%d_%d", i, n)
			fmt.Fprintf(&b, "%s%s[\"%s\"]\n", indent, id, sanitize(step.Text))
			if n > 0 {
				fmt.Fprintf(&b, "%sF%d_%d --> %s\n", indent, i, n-1, id)
			}
			for k, sub := range step.Branches {
				bid := fmt.Sprintf("%s_b%d", id, k)
				if m := branch.FindStringSubmatch(sub); m != nil {
					fmt.Fprintf(&b, "%s%s{\"%s\"}\n", indent, bid, sanitize(m[1]))
					fmt.Fprintf(&b, "%s%s -.->|\"%s\"| %s\n", indent, id, sanitize(m[2]), bid)
				} else {
					fmt.Fprintf(&b, "%s%s[\"%s\"]\n", indent, bid, sanitize(sub))
					fmt.Fprintf(&b, "%s%s -.-> %s\n", indent, id, bid)
				}
			}
		}
		if clusters {
			b.WriteString("    end\n")
		}
	}
	return b.String()
}

// sanitize makes label text safe inside a quoted Mermaid label.
func sanitize(s string) string {
	s = markdown.StripInline(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.ReplaceAll(s, "[", "(")
	s = strings.ReplaceAll(s, "]", ")")
	return s
}
