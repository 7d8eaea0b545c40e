package driven

// ConfigStore holds the flat, dot-keyed settings ("pipeline.retries",
// "classifier.api_key") that SettingsService turns into AppSettings.
// Typed getters return the zero value for a missing key or a value of
// another type; use Get to tell the two apart.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt accepts any integer representation the backend decodes to.
	GetInt(key string) int

	// GetFloat also accepts integers, so "threshold = 1" reads as 1.0.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set stores value under key and persists it before returning.
	Set(key string, value any) error

	// Save writes the whole configuration.
	Save() error

	// Load replaces the in-memory configuration with the persisted one.
	Load() error

	// Path describes where the configuration lives.
	Path() string
}
