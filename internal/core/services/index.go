package services

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Index is an immutable similarity index over embedded chunks.
type Index struct {
	vectors driven.VectorIndex
	model   string
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	return i.vectors.Len()
}

// Dimensions returns the embedding size.
func (i *Index) Dimensions() int {
	return i.vectors.Dimensions()
}

// Model returns the embedding model the index was built with.
func (i *Index) Model() string {
	return i.model
}

// Search returns up to k chunks nearest to the query vector.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	return i.vectors.Search(ctx, query, k)
}

// IndexBuilder embeds chunks and builds an Index.
type IndexBuilder struct {
	embedder  driven.EmbeddingService
	vectors   driven.VectorIndexBuilder
	batchSize int
	limiter   *rate.Limiter
}

// IndexOption configures an IndexBuilder.
type IndexOption func(*IndexBuilder)

// WithBatchSize sets how many chunks are embedded per request.
// Values <= 0 keep the default.
func WithBatchSize(n int) IndexOption {
	return func(b *IndexBuilder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithRequestsPerSecond paces embedding requests. Zero means unlimited.
func WithRequestsPerSecond(rps float64) IndexOption {
	return func(b *IndexBuilder) {
		if rps > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewIndexBuilder creates an index builder.
func NewIndexBuilder(embedder driven.EmbeddingService, vectors driven.VectorIndexBuilder, opts ...IndexOption) *IndexBuilder {
	b := &IndexBuilder{
		embedder:  embedder,
		vectors:   vectors,
		batchSize: domain.DefaultEmbeddingBatchSize,
		limiter:   rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build embeds every chunk once and returns the index.
// An empty chunk list is rejected before the embedder is called.
func (b *IndexBuilder) Build(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks to index", domain.ErrEmptyInput)
	}

	entries := make([]driven.VectorEntry, 0, len(chunks))
	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))

		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		logger.Debug("Embedding chunks %d-%d of %d", start+1, end, len(chunks))
		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}

		for i, vec := range vectors {
			entries = append(entries, driven.VectorEntry{Chunk: chunks[start+i], Vector: vec})
		}
	}

	index, err := b.vectors.Build(ctx, entries)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	return &Index{vectors: index, model: b.embedder.ModelName()}, nil
}
