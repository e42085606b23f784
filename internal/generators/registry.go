package generators

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// BuilderFunc creates a ViewGenerator from generic config.
// Config is a map of generator-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.ViewGenerator, error)

// Registry maps artifact kinds to their builders.
type Registry struct {
	builders map[domain.ArtifactKind]BuilderFunc
}

// NewRegistry creates a new generator registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[domain.ArtifactKind]BuilderFunc),
	}
}

// Register adds a generator builder to the registry.
func (r *Registry) Register(kind domain.ArtifactKind, builder BuilderFunc) {
	r.builders[kind] = builder
}

// Build creates a generator by kind with the given config.
func (r *Registry) Build(kind domain.ArtifactKind, cfg map[string]any) (driven.ViewGenerator, error) {
	builder, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown view generator: %s", kind)
	}
	return builder(cfg)
}

// Has returns true if a generator for kind is registered.
func (r *Registry) Has(kind domain.ArtifactKind) bool {
	_, ok := r.builders[kind]
	return ok
}

// Kinds returns all registered kinds in sorted order.
func (r *Registry) Kinds() []domain.ArtifactKind {
	kinds := make([]domain.ArtifactKind, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// BuildPipeline builds a pipeline for the given kinds in order.
func (r *Registry) BuildPipeline(kinds []domain.ArtifactKind, cfgs map[domain.ArtifactKind]map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, kind := range kinds {
		g, err := r.Build(kind, cfgs[kind])
		if err != nil {
			return nil, err
		}
		p.Add(g)
	}
	return p, nil
}
