package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/logger"
)

// Ensure CachedEmbedding implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// Default configuration values.
const (
	DefaultTTL         = 7 * 24 * time.Hour
	DefaultDialTimeout = 2 * time.Second
	keyPrefix          = "voiceos:emb:"
)

// Config holds the Redis cache configuration.
type Config struct {
	// Addr is host:port of the Redis server (required).
	Addr string

	// Password is the optional AUTH password.
	Password string

	// DB selects the Redis database.
	DB int

	// TTL is how long entries live (default: 7 days).
	TTL time.Duration
}

// CachedEmbedding serves embeddings from Redis and fills misses from the inner service.
// Redis failures degrade to calling the inner service directly.
type CachedEmbedding struct {
	inner  driven.EmbeddingService
	client *goredis.Client
	ttl    time.Duration
}

// NewCachedEmbedding connects to Redis and wraps inner.
func NewCachedEmbedding(ctx context.Context, inner driven.EmbeddingService, cfg Config) (*CachedEmbedding, error) {
	if inner == nil {
		return nil, errors.New("redis: inner embedding service is required")
	}
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: DefaultDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", cfg.Addr, err)
	}

	return NewFromClient(inner, client, cfg.TTL), nil
}

// NewFromClient wraps inner with an existing Redis client.
func NewFromClient(inner driven.EmbeddingService, client *goredis.Client, ttl time.Duration) *CachedEmbedding {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedEmbedding{inner: inner, client: client, ttl: ttl}
}

// Embed returns the cached embedding for text, computing it on a miss.
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch looks every text up with one MGET and embeds only the misses.
func (c *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out := make([][]float32, len(texts))
	var missIdx []int

	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("Embedding cache lookup failed: %v", err)
		cached = nil
	}
	for i := range texts {
		if i < len(cached) {
			if s, ok := cached[i].(string); ok {
				if vec := decode([]byte(s)); len(vec) > 0 {
					out[i] = vec
					continue
				}
			}
		}
		missIdx = append(missIdx, i)
	}

	if len(missIdx) == 0 {
		logger.Debug("Embedding cache: %d hits", len(texts))
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("redis: inner service returned %d embeddings for %d texts", len(fresh), len(missTexts))
	}

	pipe := c.client.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		pipe.Set(ctx, keys[i], encode(fresh[j]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Embedding cache write failed: %v", err)
	}
	logger.Debug("Embedding cache: %d hits, %d misses", len(texts)-len(missIdx), len(missIdx))

	return out, nil
}

// Dimensions returns the inner service's vector size.
func (c *CachedEmbedding) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the inner service's model.
func (c *CachedEmbedding) ModelName() string {
	return c.inner.ModelName()
}

// Ping checks both Redis and the inner service.
func (c *CachedEmbedding) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return c.inner.Ping(ctx)
}

// Close closes the Redis client and the inner service.
func (c *CachedEmbedding) Close() error {
	return errors.Join(c.client.Close(), c.inner.Close())
}

func (c *CachedEmbedding) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + c.inner.ModelName() + ":" + hex.EncodeToString(sum[:])
}

func encode(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
