package domain

// SearchMode identifies which retrieval method produced a result.
type SearchMode string

// Available search modes.
const (
	// SearchModeKeyword is case-insensitive substring matching.
	SearchModeKeyword SearchMode = "keyword"

	// SearchModeSimilarity is cosine similarity over embeddings.
	SearchModeSimilarity SearchMode = "similarity"
)

// KeywordMatchSimilarity is the sentinel similarity carried by keyword results.
// It carries no ranking meaning.
const KeywordMatchSimilarity = 1.0

// DefaultSearchLimit is used when a caller passes a non-positive limit.
const DefaultSearchLimit = 5

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// SearchResult represents a single knowledge search hit.
type SearchResult struct {
	// ID is the matched document's ID.
	ID string

	// Content is the matched document's content.
	Content string

	// Metadata is the matched document's metadata.
	Metadata DocumentMetadata

	// Similarity is the cosine similarity in [-1, 1] for similarity results,
	// or KeywordMatchSimilarity for keyword results. Scores from different
	// modes must not be compared.
	Similarity float64

	// Mode records which retrieval method produced the result.
	Mode SearchMode
}

// ResultFromDocument builds a search result for a document.
func ResultFromDocument(doc *KnowledgeDocument, similarity float64, mode SearchMode) SearchResult {
	return SearchResult{
		ID:         doc.ID,
		Content:    doc.Content,
		Metadata:   doc.Metadata,
		Similarity: similarity,
		Mode:       mode,
	}
}
