package driving

import "github.com/wevysya/voiceos/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetConfidenceThreshold updates the minimum confidence for actions.
	SetConfidenceThreshold(threshold float64) error

	// SetClassifierProvider configures the classification provider.
	SetClassifierProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// Validate checks the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateClassifierConfig validates the current classifier configuration by pinging the provider.
	ValidateClassifierConfig() error
}
