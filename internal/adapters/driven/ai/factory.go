// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	rediscache "github.com/wevysya/voiceos/internal/adapters/driven/cache/redis"
	"github.com/wevysya/voiceos/internal/adapters/driven/edge"
	"github.com/wevysya/voiceos/internal/adapters/driven/openai"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	Classifier       driven.ClassificationService
	EmbeddingService driven.EmbeddingService
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if embeddings were dropped and search is keyword-only.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Classifier != nil {
		r.Classifier.Close()
	}
}

// Init creates the classifier and embedding services described by settings.
// A classifier that cannot be created is an error; an embedding service
// that fails is dropped with a warning and search falls back to keywords.
// When validate is set both services are pinged first.
func Init(ctx context.Context, settings domain.AppSettings, prompts driven.PromptStore, validate bool) (*InitResult, error) {
	result := &InitResult{}

	classifier, err := CreateClassificationService(&settings.Classifier, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'voiceos settings set classifier.*' to fix",
			domain.ErrClassifierUnavailable, err)
	}
	if classifier == nil {
		result.Warnings = append(result.Warnings, "no classifier configured; every turn will apologise")
	} else if validate {
		if err := ping(ctx, classifier.Ping); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("classifier %s unreachable: %v", classifier.Name(), err))
		}
	}
	result.Classifier = classifier

	embedder, err := CreateEmbeddingService(ctx, &settings.Embedding, settings.Cache)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	case embedder != nil && validate:
		if err := ping(ctx, embedder.Ping); err != nil {
			embedder.Close()
			result.Warnings = append(result.Warnings, fmt.Sprintf("embedding service unreachable: %v", err))
			result.FellBack = true
		} else {
			result.EmbeddingService = embedder
		}
	default:
		result.EmbeddingService = embedder
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

// ValidateEmbeddingConfig creates an embedding service from settings and pings it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(context.Background(), settings, domain.CacheSettings{})
	if err != nil {
		return err
	}
	defer svc.Close()

	return ping(context.Background(), svc.Ping)
}

// ValidateClassifierConfig creates a classifier from settings and pings it.
func ValidateClassifierConfig(settings *domain.ClassifierSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateClassificationService(settings, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	return ping(context.Background(), svc.Ping)
}

// CreateClassificationService creates the classifier for settings.
// Returns nil if the provider is not configured.
func CreateClassificationService(
	settings *domain.ClassifierSettings, prompts driven.PromptStore,
) (driven.ClassificationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderEdge:
		client, err := edge.NewClient(edge.Config{BaseURL: settings.BaseURL, APIKey: settings.APIKey})
		if err != nil {
			return nil, err
		}
		return edge.NewClassifier(client), nil

	case domain.AIProviderOpenAI:
		c, err := openai.NewClassifier(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		if prompts != nil {
			c.SetPromptStore(prompts)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", settings.Provider)
	}
}

// CreateEmbeddingService creates the embedding service for settings, wrapped
// in the Redis cache when one is configured. Returns nil if the provider is not configured.
func CreateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings, cache domain.CacheSettings,
) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderEdge:
		client, err := edge.NewClient(edge.Config{BaseURL: settings.BaseURL, APIKey: settings.APIKey})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		svc = edge.NewEmbeddingService(client, settings.Model)

	case domain.AIProviderOpenAI:
		o, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		svc = o

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	if !cache.IsConfigured() {
		return svc, nil
	}
	cached, err := rediscache.NewCachedEmbedding(ctx, svc, rediscache.Config{Addr: cache.RedisAddr, TTL: cache.TTL})
	if err != nil {
		logger.Warn("Embedding cache disabled: %v", err)
		return svc, nil
	}
	return cached, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
