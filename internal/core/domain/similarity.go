package domain

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b, in [-1, 1].
// ok is false when the vectors differ in length or either has zero magnitude.
func CosineSimilarity(a, b []float32) (sim float64, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	sim = dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors fractionally past 1.
	return math.Max(-1, math.Min(1, sim)), true
}

// RankBySimilarity scores docs against query and returns the top limit
// results, highest first. docs must be in insertion order; ties keep it.
// Documents without a comparable embedding are skipped.
func RankBySimilarity(query []float32, docs []KnowledgeDocument, limit int) []SearchResult {
	results := make([]SearchResult, 0, len(docs))
	for i := range docs {
		sim, ok := CosineSimilarity(query, docs[i].Embedding)
		if !ok {
			continue
		}
		results = append(results, ResultFromDocument(&docs[i], sim, SearchModeSimilarity))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
