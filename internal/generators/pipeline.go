// Package generators renders derived views (advice digest, flow diagram)
// from a document and its suggestions.
package generators

import (
	"context"
	"fmt"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.ViewPipeline = (*Pipeline)(nil)

// Pipeline runs view generators in order.
type Pipeline struct {
	generators []driven.ViewGenerator
}

// NewPipeline creates a pipeline with the given generators.
// Generators are executed in the order provided.
func NewPipeline(generators ...driven.ViewGenerator) *Pipeline {
	return &Pipeline{
		generators: generators,
	}
}

// Generate renders every view. Output is tagged as generator-owned.
// A failing generator aborts the run; no partial result is returned.
func (p *Pipeline) Generate(ctx context.Context, in *domain.ViewInput) ([]domain.Artifact, error) {
	if in == nil {
		return nil, fmt.Errorf("view input is nil")
	}

	artifacts := make([]domain.Artifact, 0, len(p.generators))
	for _, g := range p.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := g.Generate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", g.Kind(), err)
		}
		artifacts = append(artifacts, domain.Artifact{
			Kind:       g.Kind(),
			Content:    content,
			Provenance: domain.ProvenanceAuto,
		})
	}
	return artifacts, nil
}

// Add appends a generator to the pipeline.
func (p *Pipeline) Add(g driven.ViewGenerator) {
	p.generators = append(p.generators, g)
}

// Len returns the number of generators in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.generators)
}

// Kinds returns the artifact kinds produced, in order.
func (p *Pipeline) Kinds() []domain.ArtifactKind {
	kinds := make([]domain.ArtifactKind, 0, len(p.generators))
	for _, g := range p.generators {
		kinds = append(kinds, g.Kind())
	}
	return kinds
}
