package ai

import (
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateClassifier validates a classifier configuration by pinging the provider.
func (v *ConfigValidator) ValidateClassifier(config *domain.ClassifierSettings) error {
	return ValidateClassifierConfig(config)
}
