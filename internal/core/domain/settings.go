package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for classification or embeddings.
type AIProvider string

// Available AI providers.
const (
	// AIProviderEdge is the hosted backend's edge functions
	// (classify-intent, generate-embedding).
	AIProviderEdge AIProvider = "edge"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderEdge, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresBaseURL returns true if this provider has no fixed endpoint.
func (p AIProvider) RequiresBaseURL() bool {
	return p == AIProviderEdge
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderEdge:
		return "Edge functions (hosted backend)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// PipelineSettings holds the voice pipeline policy knobs.
type PipelineSettings struct {
	// ConfidenceThreshold is the minimum confidence for executing an action.
	ConfidenceThreshold float64

	// ClassificationTimeout bounds each classification call.
	ClassificationTimeout time.Duration

	// SearchTimeout bounds each knowledge search.
	SearchTimeout time.Duration

	// DispatchTimeout bounds each action handler.
	DispatchTimeout time.Duration

	// Retries is how many times recoverable failures are retried locally.
	Retries int

	// DuplicateWindow is how long a turn's intent may be reused for an
	// identical consecutive transcript.
	DuplicateWindow time.Duration

	// ErrorResetAfter is how long the error state is held before a new turn
	// may reset it implicitly.
	ErrorResetAfter time.Duration

	// SearchLimit is the number of knowledge results consulted per answer.
	SearchLimit int
}

// ClassifierSettings holds classification provider configuration.
type ClassifierSettings struct {
	// Provider is the classification service provider.
	Provider AIProvider

	// Model is the LLM model name (OpenAI only).
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the bearer token.
	APIKey string
}

// IsConfigured returns true if the classifier provider is set up.
func (c ClassifierSettings) IsConfigured() bool {
	if !c.Provider.IsValid() || c.APIKey == "" {
		return false
	}
	if c.Provider.RequiresBaseURL() && c.BaseURL == "" {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the bearer token.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.APIKey == "" {
		return false
	}
	if e.Provider.RequiresBaseURL() && e.BaseURL == "" {
		return false
	}
	return true
}

// CacheSettings holds the embedding cache configuration.
type CacheSettings struct {
	// RedisAddr is host:port of the Redis server. Empty disables caching.
	RedisAddr string

	// TTL is how long cached embeddings live.
	TTL time.Duration
}

// IsConfigured returns true if a cache backend is set.
func (c CacheSettings) IsConfigured() bool {
	return c.RedisAddr != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Pipeline holds voice pipeline policy.
	Pipeline PipelineSettings

	// Classifier holds classification provider settings.
	Classifier ClassifierSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Cache holds embedding cache settings.
	Cache CacheSettings
}

// DefaultPipelineSettings returns the default pipeline policy.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		ConfidenceThreshold:   DefaultConfidenceThreshold,
		ClassificationTimeout: 8 * time.Second,
		SearchTimeout:         3 * time.Second,
		DispatchTimeout:       10 * time.Second,
		Retries:               1,
		DuplicateWindow:       3 * time.Second,
		ErrorResetAfter:       5 * time.Second,
		SearchLimit:           3,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; without a classifier every turn
// ends in a clarification-free apology.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline:   DefaultPipelineSettings(),
		Classifier: ClassifierSettings{},
		Embedding:  EmbeddingSettings{},
		Cache: CacheSettings{
			TTL: 24 * time.Hour,
		},
	}
}

// AllProviders returns every provider.
func AllProviders() []AIProvider {
	return []AIProvider{AIProviderEdge, AIProviderOpenAI}
}

// DefaultClassifierModels returns default models for each classification provider.
func DefaultClassifierModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderEdge:   "",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderEdge:   "gte-small",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"gte-small":              384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
