package services

import (
	"fmt"
	"time"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyConfidenceThreshold = "pipeline.confidence_threshold"
	keyClassifyTimeoutMS   = "pipeline.classification_timeout_ms"
	keySearchTimeoutMS     = "pipeline.search_timeout_ms"
	keyDispatchTimeoutMS   = "pipeline.dispatch_timeout_ms"
	keyRetries             = "pipeline.retries"
	keyDuplicateWindowMS   = "pipeline.duplicate_window_ms"
	keyErrorResetMS        = "pipeline.error_reset_ms"
	keySearchLimit         = "pipeline.search_limit"
	keyClassifierProvider  = "classifier.provider"
	keyClassifierModel     = "classifier.model"
	keyClassifierBaseURL   = "classifier.base_url"
	keyClassifierAPIKey    = "classifier.api_key"
	keyEmbedProvider       = "embedding.provider"
	keyEmbedModel          = "embedding.model"
	keyEmbedBaseURL        = "embedding.base_url"
	keyEmbedAPIKey         = "embedding.api_key"
	keyCacheRedisAddr      = "cache.redis_addr"
	keyCacheTTLSeconds     = "cache.ttl_s"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	dp := defaults.Pipeline

	settings := &domain.AppSettings{
		Pipeline: domain.PipelineSettings{
			ConfidenceThreshold:   s.getThreshold(dp.ConfidenceThreshold),
			ClassificationTimeout: s.getMillis(keyClassifyTimeoutMS, dp.ClassificationTimeout),
			SearchTimeout:         s.getMillis(keySearchTimeoutMS, dp.SearchTimeout),
			DispatchTimeout:       s.getMillis(keyDispatchTimeoutMS, dp.DispatchTimeout),
			Retries:               s.getRetries(dp.Retries),
			DuplicateWindow:       s.getMillis(keyDuplicateWindowMS, dp.DuplicateWindow),
			ErrorResetAfter:       s.getMillis(keyErrorResetMS, dp.ErrorResetAfter),
			SearchLimit:           s.getInt(keySearchLimit, dp.SearchLimit),
		},
		Classifier: domain.ClassifierSettings{
			Provider: s.getProvider(keyClassifierProvider, defaults.Classifier.Provider),
			Model:    s.configStore.GetString(keyClassifierModel),
			BaseURL:  s.configStore.GetString(keyClassifierBaseURL),
			APIKey:   s.configStore.GetString(keyClassifierAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Cache: domain.CacheSettings{
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
			TTL:       s.getSeconds(keyCacheTTLSeconds, defaults.Cache.TTL),
		},
	}

	if settings.Classifier.Model == "" {
		settings.Classifier.Model = domain.DefaultClassifierModels()[settings.Classifier.Provider]
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	p := settings.Pipeline
	values := []struct {
		key   string
		value any
	}{
		{keyConfidenceThreshold, p.ConfidenceThreshold},
		{keyClassifyTimeoutMS, p.ClassificationTimeout.Milliseconds()},
		{keySearchTimeoutMS, p.SearchTimeout.Milliseconds()},
		{keyDispatchTimeoutMS, p.DispatchTimeout.Milliseconds()},
		{keyRetries, p.Retries},
		{keyDuplicateWindowMS, p.DuplicateWindow.Milliseconds()},
		{keyErrorResetMS, p.ErrorResetAfter.Milliseconds()},
		{keySearchLimit, p.SearchLimit},
		{keyClassifierProvider, settings.Classifier.Provider.String()},
		{keyClassifierModel, settings.Classifier.Model},
		{keyClassifierBaseURL, settings.Classifier.BaseURL},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheTTLSeconds, int64(settings.Cache.TTL / time.Second)},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when present so env-provided keys are not persisted as empty.
	if settings.Classifier.APIKey != "" {
		if err := s.configStore.Set(keyClassifierAPIKey, settings.Classifier.APIKey); err != nil {
			return fmt.Errorf("save classifier api_key: %w", err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

// SetConfidenceThreshold updates the minimum confidence for executing actions.
func (s *SettingsService) SetConfidenceThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: confidence threshold %.2f outside [0,1]", domain.ErrInvalidInput, threshold)
	}
	return s.configStore.Set(keyConfidenceThreshold, threshold)
}

// SetClassifierProvider configures the classification provider.
func (s *SettingsService) SetClassifierProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid classifier provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresBaseURL() && baseURL == "" {
		return fmt.Errorf("%w: base URL required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Classifier.Provider = provider
	settings.Classifier.Model = model
	if model == "" {
		settings.Classifier.Model = domain.DefaultClassifierModels()[provider]
	}
	settings.Classifier.BaseURL = baseURL
	settings.Classifier.APIKey = apiKey

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresBaseURL() && baseURL == "" {
		return fmt.Errorf("%w: base URL required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = baseURL
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	p := settings.Pipeline
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %.2f outside [0,1]", domain.ErrInvalidInput, p.ConfidenceThreshold)
	}
	if p.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", domain.ErrInvalidInput)
	}
	if settings.Classifier.Provider != "" && !settings.Classifier.IsConfigured() {
		return fmt.Errorf("classifier provider %q is missing an API key or base URL", settings.Classifier.Provider)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is missing an API key or base URL", settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateClassifierConfig validates the current classifier configuration by pinging the provider.
func (s *SettingsService) ValidateClassifierConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateClassifier(&settings.Classifier)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get("scheduler.enabled"); exists {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled")
	}

	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDEmbeddingBackfill: "embedding_backfill",
		domain.TaskIDSessionReset:      "session_reset",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Duration string like "15m", "1h"
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil && d > 0 {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getMillis(key string, defaultVal time.Duration) time.Duration {
	ms := s.configStore.GetInt(key)
	if ms <= 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.configStore.GetInt(key)
	if secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

// getRetries distinguishes an explicit 0 from an absent key.
func (s *SettingsService) getRetries(defaultVal int) int {
	if _, exists := s.configStore.Get(keyRetries); !exists {
		return defaultVal
	}
	if n := s.configStore.GetInt(keyRetries); n >= 0 {
		return n
	}
	return defaultVal
}

func (s *SettingsService) getThreshold(defaultVal float64) float64 {
	if _, exists := s.configStore.Get(keyConfidenceThreshold); !exists {
		return defaultVal
	}
	v := s.configStore.GetFloat(keyConfidenceThreshold)
	if v < 0 || v > 1 {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
