package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// PostProcessor turns a record into chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a record and returns chunks.
	// A processor that creates chunks (the chunker) receives nil chunks.
	// A processor that rewrites chunks receives the previous output.
	Process(ctx context.Context, record *domain.Record, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the record through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, record *domain.Record) ([]domain.Chunk, error)
}

// PostProcessorPipelineFactory builds pipelines from configuration.
type PostProcessorPipelineFactory interface {
	// BuildPipeline returns the pipeline described by cfg.
	// Unknown processors and invalid parameters return domain.ErrConfig.
	BuildPipeline(cfg domain.PipelineConfig) (PostProcessorPipeline, error)
}
