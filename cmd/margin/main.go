// Command margin reviews AI suggestions anchored in markdown documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/margin/internal/adapters/driven/config/file"
	"github.com/custodia-labs/margin/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/margin/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/margin/internal/adapters/driving/cli"
	fswatch "github.com/custodia-labs/margin/internal/connectors/filesystem"
	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/services"
	"github.com/custodia-labs/margin/internal/generators"
	"github.com/custodia-labs/margin/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// stateDir holds the workspace config and decision history. It does not
// follow workspace.sidecar_dir, which is read from the config inside it.
const stateDir = ".margin"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	log := logger.Default()
	dir := filepath.Join(opts.Workspace, stateDir)

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", configStore.Path(), err)
	}

	layout := domain.NewLayout(settings.Workspace.SidecarDir)
	sidecars, err := filesystem.NewSidecarStore(opts.Workspace, layout)
	if err != nil {
		return nil, err
	}

	pipeline, err := generators.DefaultPipeline(settings.Views)
	if err != nil {
		return nil, fmt.Errorf("building view pipeline: %w", err)
	}

	storeOpts := []services.StoreOption{
		services.WithLogger(log),
		services.WithViews(filesystem.NewArtifactStore(layout), pipeline),
	}

	var history *sqlite.Store
	if settings.History.Enabled {
		history, err = sqlite.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("opening decision history: %w", err)
		}
		storeOpts = append(storeOpts, services.WithDecisions(history.DecisionStore(), settings.History))
	}

	store := services.NewSuggestionStore(filesystem.NewDocumentStore(), sidecars, layout, storeOpts...)
	if err := store.ScanAll(ctx); err != nil {
		log.Warn("initial scan: %v", err)
	}

	watcher := fswatch.New(opts.Workspace, layout, log)
	watch := services.NewWatchService(watcher, store, layout, settings.Watch, log)

	closeAll := func() error {
		errs := []error{watch.Stop(), watcher.Close(), store.Close()}
		if history != nil {
			errs = append(errs, history.Close())
		}
		return errors.Join(errs...)
	}

	return &cli.Services{
		Suggestions: store,
		Actions:     services.NewDispatcher(store),
		Settings:    settingsService,
		Watch:       watch,
		Layout:      layout,
		Close:       closeAll,
	}, nil
}
