package driven

// ConfigStore holds the workspace settings file as flat dot-separated keys
// ("watch.debounce_ms"). Typed getters return the zero value when a key is
// missing or holds another type; the settings service layers defaults on top.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores a value and persists the file before returning.
	Set(key string, value any) error
}
