package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Retriever finds the chunks most similar to a question.
// It must use the embedder the index was built with.
type Retriever struct {
	embedder driven.EmbeddingService
	index    *Index
	k        int
}

// NewRetriever creates a retriever returning at most k chunks.
func NewRetriever(embedder driven.EmbeddingService, index *Index, k int) (*Retriever, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top k must be > 0, got %d", domain.ErrConfig, k)
	}
	return &Retriever{embedder: embedder, index: index, k: k}, nil
}

// K returns the number of chunks requested per question.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve embeds the question and returns min(k, index size) chunks,
// most similar first. There is no similarity threshold.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.RetrievedChunk, error) {
	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := r.index.Search(ctx, query, r.k)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// A query vector of the wrong size is the embedder's fault.
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	results := make([]domain.RetrievedChunk, len(hits))
	for i, hit := range hits {
		results[i] = domain.RetrievedChunk{
			Chunk: hit.Chunk,
			Rank:  i + 1,
			Score: hit.Similarity,
		}
		logger.Debug("  E%d %.4f %s", i+1, hit.Similarity, hit.Chunk.Provenance.Citation())
	}
	return results, nil
}
