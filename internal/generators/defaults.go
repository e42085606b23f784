package generators

import (
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/generators/advice"
	"github.com/custodia-labs/margin/internal/generators/flow"
)

// RegisterDefaults registers all built-in generators with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(domain.ArtifactAdvice, buildAdvice)
	r.Register(domain.ArtifactFlow, buildFlow)
}

// DefaultPipeline builds a pipeline for the kinds enabled in settings.
func DefaultPipeline(views domain.ViewSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(views.Enabled(), nil)
}

// buildAdvice creates the advice digest generator.
// Supported config keys:
//   - line_refs (bool): Annotate advice with resolved line numbers (default: true)
func buildAdvice(cfg map[string]any) (driven.ViewGenerator, error) {
	var opts []advice.Option
	if v, ok := getBoolFromConfig(cfg, "line_refs"); ok {
		opts = append(opts, advice.WithLineRefs(v))
	}
	return advice.New(opts...), nil
}

// buildFlow creates the flow diagram generator.
// Supported config keys:
//   - min_items (int): Ordered-list length that counts as a flow (default: 2)
func buildFlow(cfg map[string]any) (driven.ViewGenerator, error) {
	var opts []flow.Option
	if n := getIntFromConfig(cfg, "min_items"); n > 0 {
		opts = append(opts, flow.WithMinItems(n))
	}
	return flow.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getBoolFromConfig extracts a bool and reports whether it was set.
func getBoolFromConfig(cfg map[string]any, key string) (bool, bool) {
	v, ok := cfg[key].(bool)
	return v, ok
}
