package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/normalisers/html"
	"github.com/wevysya/voiceos/internal/normalisers/markdown"
	"github.com/wevysya/voiceos/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.Normaliser = (*Registry)(nil)

// Registry selects a normaliser by file extension.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates an empty registry. fallback handles unknown
// extensions and may be nil, in which case they are rejected.
func NewRegistry(fallback driven.Normaliser) *Registry {
	return &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
}

// Defaults returns a registry with the markdown, HTML and plain text
// normalisers, using plain text for anything else.
func Defaults() *Registry {
	text := plaintext.New()
	r := NewRegistry(text)
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(text)
	return r
}

// Register adds n for each of its extensions, replacing earlier entries.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range n.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// For returns the normaliser for path and whether one was found.
func (r *Registry) For(path string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return n, true
	}
	return r.fallback, r.fallback != nil
}

// Supports reports whether path has a registered extension.
// The fallback does not count.
func (r *Registry) Supports(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns every registered extension.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}

// Normalise dispatches to the normaliser for path.
func (r *Registry) Normalise(ctx context.Context, path string, raw []byte) (*domain.KnowledgeDocument, error) {
	n, ok := r.For(path)
	if !ok {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrInvalidInput, filepath.Base(path))
	}
	return n.Normalise(ctx, path, raw)
}
