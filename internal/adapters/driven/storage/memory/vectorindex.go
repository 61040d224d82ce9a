package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure the index types implement the interfaces.
var (
	_ driven.VectorIndexBuilder = (*VectorIndexBuilder)(nil)
	_ driven.VectorIndex        = (*VectorIndex)(nil)
)

// VectorIndexBuilder builds exact in-memory cosine indexes.
type VectorIndexBuilder struct{}

// NewVectorIndexBuilder creates a new builder.
func NewVectorIndexBuilder() *VectorIndexBuilder {
	return &VectorIndexBuilder{}
}

// Build copies the entries into a new index.
// All vectors must be non-empty and share one length.
func (b *VectorIndexBuilder) Build(ctx context.Context, entries []driven.VectorEntry) (driven.VectorIndex, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to index")
	}

	dims := len(entries[0].Vector)
	if dims == 0 {
		return nil, fmt.Errorf("entry 0 has an empty vector")
	}

	idx := &VectorIndex{
		dims:    dims,
		entries: make([]indexedEntry, len(entries)),
	}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(e.Vector) != dims {
			return nil, fmt.Errorf("entry %d has %d dimensions, want %d", i, len(e.Vector), dims)
		}
		vec := make([]float32, dims)
		copy(vec, e.Vector)
		idx.entries[i] = indexedEntry{
			entry: driven.VectorEntry{Chunk: e.Chunk, Vector: vec},
			norm:  norm(vec),
		}
	}

	return idx, nil
}

// VectorIndex is an immutable brute-force cosine similarity index.
// It is safe for concurrent searches because nothing mutates it after Build.
type VectorIndex struct {
	dims    int
	entries []indexedEntry
}

type indexedEntry struct {
	entry driven.VectorEntry
	norm  float64
}

// Search returns up to k entries ordered by non-increasing similarity.
// Equal scores keep build order.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != v.dims {
		return nil, fmt.Errorf("query has %d dimensions, want %d", len(query), v.dims)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qnorm := norm(query)
	hits := make([]driven.VectorHit, len(v.entries))
	for i, e := range v.entries {
		hits[i] = driven.VectorHit{
			Chunk:      e.entry.Chunk,
			Similarity: cosine(query, qnorm, e.entry.Vector, e.norm),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of entries.
func (v *VectorIndex) Len() int {
	return len(v.entries)
}

// Dimensions returns the vector size.
func (v *VectorIndex) Dimensions() int {
	return v.dims
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
