package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// ProgressFunc receives construction progress as step n of total.
type ProgressFunc func(step, total int, message string)

// QuestionAnswerer answers questions against a built index.
// Questions are independent; no history is carried between them.
type QuestionAnswerer interface {
	// Ask retrieves evidence for question and assembles an answer.
	// A blank question returns domain.ErrEmptyInput without touching the index.
	Ask(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve returns the chunks most similar to question, most similar first.
	Retrieve(ctx context.Context, question string) ([]domain.RetrievedChunk, error)

	// FormatContext renders retrieved chunks as the evidence block sent to the model.
	FormatContext(chunks []domain.RetrievedChunk) string

	// Stats describes the built index.
	Stats() domain.IndexStats

	// State reports whether the pipeline can take questions.
	State() domain.PipelineState

	// Close releases the collaborators.
	Close() error
}

// PipelineBuilder constructs question answerers.
type PipelineBuilder interface {
	// Build validates settings, creates collaborators and runs
	// load, split and index. It returns a ready pipeline or an error,
	// never a partially built one. progress may be nil.
	Build(ctx context.Context, settings *domain.AppSettings, progress ProgressFunc) (QuestionAnswerer, error)

	// Inspect runs load and split only and reports what would be indexed.
	Inspect(ctx context.Context, settings *domain.AppSettings) (*domain.CorpusReport, error)
}
