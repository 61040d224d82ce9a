package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// VectorEntry pairs a chunk with its embedding.
type VectorEntry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// VectorIndexBuilder creates an index from a complete set of entries.
// The returned index never changes afterwards.
type VectorIndexBuilder interface {
	// Build validates the entries and returns a searchable index.
	Build(ctx context.Context, entries []VectorEntry) (VectorIndex, error)
}

// VectorIndex provides read-only similarity search.
// Implementations must be safe for concurrent Search calls.
type VectorIndex interface {
	// Search finds the k nearest entries to the query vector, most similar
	// first. Fewer than k hits are returned when the index is smaller.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the vector size shared by all entries.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}
