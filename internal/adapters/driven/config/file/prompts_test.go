package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".voiceos", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptClarification)
	require.NoError(t, err)

	for _, f := range []string{"intent_classifier.txt", "clarification.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultTemplatesRender(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	classifier, err := store.Load(driven.PromptIntentClassifier)
	require.NoError(t, err)
	rendered := fmt.Sprintf(classifier, "- call_member(name)", "general, membership")
	assert.Contains(t, rendered, "- call_member(name)")
	assert.Contains(t, rendered, "general, membership")
	assert.NotContains(t, rendered, "%!")

	clarification, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(clarification, "%s"))
}

func TestPromptStore_Load_CustomContentTrimmed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clarification.txt"), []byte("  Should I %s?  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	assert.Equal(t, "Should I %s?", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Load_FallsBackWhenFileDeleted(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptClarification)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "clarification.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	want, _ := DefaultPrompt(driven.PromptClarification)
	assert.Equal(t, want, prompt)
}

func TestPromptStore_CachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "clarification.txt")

	require.NoError(t, os.WriteFile(path, []byte("First %s"), 0600))
	first, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	assert.Equal(t, "First %s", first)

	require.NoError(t, os.WriteFile(path, []byte("Second %s"), 0600))
	cached, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	assert.Equal(t, "First %s", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptClarification)
	require.NoError(t, err)
	assert.Equal(t, "Second %s", fresh)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Load(driven.PromptIntentClassifier)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestPromptStore_WatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptClarification)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(name string) {
			select {
			case changed <- name:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clarification.txt"), []byte("Edited %s"), 0600))

	select {
	case name := <-changed:
		assert.Equal(t, driven.PromptClarification, name)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptClarification)
		return err == nil && prompt == "Edited %s"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
