package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
	"github.com/custodia-labs/margin/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySidecarDir     = "workspace.sidecar_dir"
	keyDebounceMS     = "watch.debounce_ms"
	keyMaxRescans     = "watch.max_rescans_per_second"
	keyViewsAdvice    = "views.advice"
	keyViewsFlow      = "views.flow"
	keyHistoryEnabled = "history.enabled"
	keyHistoryKeep    = "history.keep"
)

// settingKeys lists every key in display order.
var settingKeys = []string{
	keySidecarDir,
	keyDebounceMS,
	keyMaxRescans,
	keyViewsAdvice,
	keyViewsFlow,
	keyHistoryEnabled,
	keyHistoryKeep,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Missing keys take defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Workspace: domain.WorkspaceSettings{
			SidecarDir: s.getString(keySidecarDir, defaults.Workspace.SidecarDir),
		},
		Watch: domain.WatchSettings{
			DebounceMS:          s.getInt(keyDebounceMS, defaults.Watch.DebounceMS),
			MaxRescansPerSecond: s.getInt(keyMaxRescans, defaults.Watch.MaxRescansPerSecond),
		},
		Views: domain.ViewSettings{
			Advice: s.getBool(keyViewsAdvice, defaults.Views.Advice),
			Flow:   s.getBool(keyViewsFlow, defaults.Views.Flow),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
			Keep:    s.getInt(keyHistoryKeep, defaults.History.Keep),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keySidecarDir, settings.Workspace.SidecarDir},
		{keyDebounceMS, settings.Watch.DebounceMS},
		{keyMaxRescans, settings.Watch.MaxRescansPerSecond},
		{keyViewsAdvice, settings.Views.Advice},
		{keyViewsFlow, settings.Views.Flow},
		{keyHistoryEnabled, settings.History.Enabled},
		{keyHistoryKeep, settings.History.Keep},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key, validates the result and saves it.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case keySidecarDir:
		settings.Workspace.SidecarDir = value
	case keyDebounceMS:
		settings.Watch.DebounceMS, err = parseInt(key, value)
	case keyMaxRescans:
		settings.Watch.MaxRescansPerSecond, err = parseInt(key, value)
	case keyViewsAdvice:
		settings.Views.Advice, err = parseBool(key, value)
	case keyViewsFlow:
		settings.Views.Flow, err = parseBool(key, value)
	case keyHistoryEnabled:
		settings.History.Enabled, err = parseBool(key, value)
	case keyHistoryKeep:
		settings.History.Keep, err = parseInt(key, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return err
	}

	return s.Save(settings)
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Value returns the current value of key in the form Set accepts.
func (s *SettingsService) Value(key string) (string, error) {
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case keySidecarDir:
		return settings.Workspace.SidecarDir, nil
	case keyDebounceMS:
		return strconv.Itoa(settings.Watch.DebounceMS), nil
	case keyMaxRescans:
		return strconv.Itoa(settings.Watch.MaxRescansPerSecond), nil
	case keyViewsAdvice:
		return strconv.FormatBool(settings.Views.Advice), nil
	case keyViewsFlow:
		return strconv.FormatBool(settings.Views.Flow), nil
	case keyHistoryEnabled:
		return strconv.FormatBool(settings.History.Enabled), nil
	case keyHistoryKeep:
		return strconv.Itoa(settings.History.Keep), nil
	default:
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
	}
	return n, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
	}
	return b, nil
}
