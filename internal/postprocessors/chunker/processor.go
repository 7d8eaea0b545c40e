// Package chunker splits long knowledge documents into sections small enough
// that the first sentence of a matching section is a useful spoken answer.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
)

// DefaultChunkSize is the default maximum number of runes per section.
const DefaultChunkSize = 1200

// minChunkSize keeps sections from degenerating into single words.
const minChunkSize = 80

// Ensure Processor implements the interface.
var _ driven.DocumentSplitter = (*Processor)(nil)

// Processor splits document content on paragraph boundaries.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum section size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size >= minChunkSize {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum section size in runes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Split returns doc unchanged when it fits in one section. Otherwise it
// returns one document per section with IDs "<id>#<n>" and titles
// "<title> (part n)", counting from 1. doc must already have an ID.
func (p *Processor) Split(doc *domain.KnowledgeDocument) []*domain.KnowledgeDocument {
	if doc == nil {
		return nil
	}
	sections := p.sections(doc.Content)
	if len(sections) <= 1 {
		return []*domain.KnowledgeDocument{doc}
	}

	out := make([]*domain.KnowledgeDocument, 0, len(sections))
	for i, content := range sections {
		part := *doc
		part.ID = fmt.Sprintf("%s#%d", doc.ID, i+1)
		part.Content = content
		part.Embedding = nil
		part.Metadata.Title = fmt.Sprintf("%s (part %d)", doc.Metadata.Title, i+1)
		out = append(out, &part)
	}
	return out
}

// sections packs paragraphs into sections of at most chunkSize runes.
func (p *Processor) sections(content string) []string {
	var (
		out     []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, piece := range p.pieces(content) {
		n := utf8.RuneCountInString(piece)
		if size > 0 && size+2+n > p.chunkSize {
			flush()
		}
		if size > 0 {
			current.WriteString("\n\n")
			size += 2
		}
		current.WriteString(piece)
		size += n
	}
	flush()
	return out
}

// pieces breaks content into paragraphs, splitting any paragraph longer
// than chunkSize at sentence ends and, failing that, at rune boundaries.
func (p *Processor) pieces(content string) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= p.chunkSize {
			out = append(out, para)
			continue
		}
		out = append(out, p.splitLong(para)...)
	}
	return out
}

func (p *Processor) splitLong(para string) []string {
	var out []string
	runes := []rune(para)
	for len(runes) > p.chunkSize {
		cut := sentenceCut(runes[:p.chunkSize])
		if cut == 0 {
			cut = p.chunkSize
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// sentenceCut returns the index just past the last sentence end in runes
// that is followed by a space, or 0 if there is none.
func sentenceCut(runes []rune) int {
	for i := len(runes) - 2; i > 0; i-- {
		switch runes[i] {
		case '.', '!', '?':
			if runes[i+1] == ' ' || runes[i+1] == '\n' {
				return i + 1
			}
		}
	}
	return 0
}
