package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("classifier.provider", "edge"))
	require.NoError(t, store.Set("classifier.provider", "openai"))

	val, ok := store.Get("classifier.provider")
	require.True(t, ok)
	assert.Equal(t, "openai", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("classifier.model", "gpt-4o-mini")
	_ = store.Set("pipeline.retries", 1)

	assert.Equal(t, "gpt-4o-mini", store.GetString("classifier.model"))
	assert.Empty(t, store.GetString("pipeline.retries"), "wrong type")
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 8000, 8000},
		{"int64", int64(3000), 3000},
		{"float64", float64(10000), 10000},
		{"string", "8000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			_ = store.Set("pipeline.classify_timeout_ms", tt.value)
			assert.Equal(t, tt.want, store.GetInt("pipeline.classify_timeout_ms"))
		})
	}

	assert.Zero(t, NewConfigStore().GetInt("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float64", 0.65, 0.65},
		{"float32", float32(0.5), 0.5},
		{"int", 1, 1},
		{"int64", int64(0), 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			_ = store.Set("pipeline.confidence_threshold", tt.value)
			assert.InDelta(t, tt.want, store.GetFloat("pipeline.confidence_threshold"), 1e-6)
		})
	}

	assert.Zero(t, NewConfigStore().GetFloat("missing"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("scheduler.enabled", true)
	_ = store.Set("scheduler.session_reset.enabled", "yes")

	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.False(t, store.GetBool("scheduler.session_reset.enabled"), "wrong type")
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("pipeline.retries", 2)

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, 2, store.GetInt("pipeline.retries"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("pipeline.search_limit", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("pipeline.search_limit")
		}()
	}
	wg.Wait()

	_, ok := store.Get("pipeline.search_limit")
	assert.True(t, ok)
}
