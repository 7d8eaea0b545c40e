package edge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	// FunctionGenerateEmbedding is the embedding function name.
	FunctionGenerateEmbedding = "generate-embedding"

	// DefaultEmbeddingModel is the model served by generate-embedding.
	DefaultEmbeddingModel = "gte-small"

	// DefaultDimensions is the gte-small vector size.
	DefaultDimensions = 384
)

type embeddingRequest struct {
	Input string `json:"input"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// EmbeddingService calls the generate-embedding edge function.
type EmbeddingService struct {
	client     *Client
	model      string
	dimensions int
}

// NewEmbeddingService creates an embedding service over an edge client.
// An empty model selects gte-small.
func NewEmbeddingService(client *Client, model string) *EmbeddingService {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingService{client: client, model: model, dimensions: DefaultDimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := s.client.Invoke(ctx, FunctionGenerateEmbedding, embeddingRequest{Input: text})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: edge: decode embedding: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: edge: %s", domain.ErrEmbeddingUnavailable, resp.Error)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: edge: no embedding returned", domain.ErrEmbeddingUnavailable)
	}
	return resp.Embedding, nil
}

// EmbedBatch embeds each text in turn. The function takes one input per call;
// the rate limiter paces the loop.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out = append(out, vec)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the function is deployed.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, FunctionGenerateEmbedding)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
