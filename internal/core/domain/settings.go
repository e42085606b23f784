package domain

import (
	"fmt"
	"strings"
	"time"
)

// WorkspaceSettings holds workspace layout configuration.
type WorkspaceSettings struct {
	// SidecarDir is the name of the per-document output directory
	// created next to each markdown document.
	SidecarDir string
}

// WatchSettings holds file watcher configuration.
type WatchSettings struct {
	// DebounceMS is the coalescing window for change notifications.
	DebounceMS int

	// MaxRescansPerSecond caps how often a full re-scan may run.
	MaxRescansPerSecond int
}

// Debounce returns the debounce window as a duration.
func (w WatchSettings) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// ViewSettings selects which derived views are regenerated.
type ViewSettings struct {
	Advice bool
	Flow   bool
}

// Enabled returns the enabled artifact kinds in generation order.
func (v ViewSettings) Enabled() []ArtifactKind {
	var kinds []ArtifactKind
	if v.Advice {
		kinds = append(kinds, ArtifactAdvice)
	}
	if v.Flow {
		kinds = append(kinds, ArtifactFlow)
	}
	return kinds
}

// HistorySettings holds decision log configuration.
type HistorySettings struct {
	// Enabled turns decision recording on or off.
	Enabled bool

	// Keep is how many decisions are retained per sidecar.
	Keep int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Workspace WorkspaceSettings
	Watch     WatchSettings
	Views     ViewSettings
	History   HistorySettings
}

// Default setting values.
const (
	DefaultSidecarDir          = ".margin"
	DefaultDebounceMS          = 300
	DefaultMaxRescansPerSecond = 2
	DefaultHistoryKeep         = 500
)

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Workspace: WorkspaceSettings{SidecarDir: DefaultSidecarDir},
		Watch: WatchSettings{
			DebounceMS:          DefaultDebounceMS,
			MaxRescansPerSecond: DefaultMaxRescansPerSecond,
		},
		Views:   ViewSettings{Advice: true, Flow: true},
		History: HistorySettings{Enabled: true, Keep: DefaultHistoryKeep},
	}
}

// Validate checks the settings for values the rest of the system cannot use.
func (s *AppSettings) Validate() error {
	dir := strings.TrimSpace(s.Workspace.SidecarDir)
	if dir == "" || strings.ContainsAny(dir, `/\`) {
		return fmt.Errorf("%w: workspace.sidecar_dir must be a plain directory name", ErrInvalidInput)
	}
	if s.Watch.DebounceMS <= 0 {
		return fmt.Errorf("%w: watch.debounce_ms must be positive", ErrInvalidInput)
	}
	if s.Watch.MaxRescansPerSecond <= 0 {
		return fmt.Errorf("%w: watch.max_rescans_per_second must be positive", ErrInvalidInput)
	}
	if s.History.Keep <= 0 {
		return fmt.Errorf("%w: history.keep must be positive", ErrInvalidInput)
	}
	return nil
}
