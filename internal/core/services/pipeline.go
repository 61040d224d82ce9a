package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure Pipeline and PipelineBuilder implement the interfaces.
var (
	_ driving.QuestionAnswerer = (*Pipeline)(nil)
	_ driving.PipelineBuilder  = (*PipelineBuilder)(nil)
)

// Construction steps reported to the progress callback.
const buildSteps = 4

// Pipeline answers questions against a built index.
// The zero value is Unbuilt and refuses questions.
type Pipeline struct {
	state     domain.PipelineState
	retriever *Retriever
	assembler *Assembler
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	stats     domain.IndexStats
}

// State reports whether the pipeline can take questions.
func (p *Pipeline) State() domain.PipelineState {
	return p.state
}

// Stats describes the built index.
func (p *Pipeline) Stats() domain.IndexStats {
	return p.stats
}

// Ask retrieves evidence for question and assembles an answer.
// Questions are independent and never change the index.
func (p *Pipeline) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	question, err := p.checkQuestion(question)
	if err != nil {
		return nil, err
	}

	logger.Section("Question")
	logger.Debug("Question: %q", question)

	chunks, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	answer, err := p.assembler.Answer(ctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return answer, nil
}

// Retrieve returns the evidence chunks for question without generating.
func (p *Pipeline) Retrieve(ctx context.Context, question string) ([]domain.RetrievedChunk, error) {
	question, err := p.checkQuestion(question)
	if err != nil {
		return nil, err
	}

	chunks, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return chunks, nil
}

// FormatContext renders chunks as the evidence block sent to the model.
func (p *Pipeline) FormatContext(chunks []domain.RetrievedChunk) string {
	return FormatContext(chunks)
}

// Close releases the collaborators.
func (p *Pipeline) Close() error {
	var errs []error
	if p.embedder != nil {
		errs = append(errs, p.embedder.Close())
	}
	if p.llm != nil {
		errs = append(errs, p.llm.Close())
	}
	return errors.Join(errs...)
}

func (p *Pipeline) checkQuestion(question string) (string, error) {
	if p.state != domain.PipelineReady {
		return "", domain.ErrNotReady
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrEmptyInput)
	}
	return question, nil
}

// PipelineBuilder constructs pipelines from settings.
type PipelineBuilder struct {
	ai         driven.AIServiceFactory
	extractors driven.ExtractorRegistry
	splitters  driven.PostProcessorPipelineFactory
	vectors    driven.VectorIndexBuilder
	prompts    driven.PromptStore
}

// NewPipelineBuilder creates a pipeline builder.
func NewPipelineBuilder(
	ai driven.AIServiceFactory,
	extractors driven.ExtractorRegistry,
	splitters driven.PostProcessorPipelineFactory,
	vectors driven.VectorIndexBuilder,
	prompts driven.PromptStore,
) *PipelineBuilder {
	return &PipelineBuilder{
		ai:         ai,
		extractors: extractors,
		splitters:  splitters,
		vectors:    vectors,
		prompts:    prompts,
	}
}

// Build validates settings, creates the collaborators, then loads, splits
// and indexes the corpus. Settings errors are returned before any I/O.
// On failure nothing is returned and the collaborators are closed.
func (b *PipelineBuilder) Build(
	ctx context.Context,
	settings *domain.AppSettings,
	progress driving.ProgressFunc,
) (driving.QuestionAnswerer, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are nil", domain.ErrConfig)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	splitter, err := b.splitters.BuildPipeline(settings.Chunking.PipelineConfig())
	if err != nil {
		return nil, err
	}

	embedder, err := b.ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	llm, err := b.ai.CreateLLMService(&settings.LLM)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	p, err := b.build(ctx, settings, progress, splitter, embedder, llm)
	if err != nil {
		embedder.Close()
		llm.Close()
		return nil, err
	}
	return p, nil
}

func (b *PipelineBuilder) build(
	ctx context.Context,
	settings *domain.AppSettings,
	progress driving.ProgressFunc,
	splitter driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) (*Pipeline, error) {
	logger.Section("Building pipeline")

	report(progress, 1, "Loading documents from %s", settings.Data.Dir)
	records, err := NewLoader(b.extractors, settings.Data.Extensions).Load(ctx, settings.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	report(progress, 2, "Splitting %d pages into chunks", len(records))
	chunks, err := split(ctx, splitter, records)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	report(progress, 3, "Embedding %d chunks with %s", len(chunks), embedder.ModelName())
	index, err := NewIndexBuilder(embedder, b.vectors,
		WithBatchSize(settings.Embedding.BatchSize),
		WithRequestsPerSecond(settings.Embedding.RequestsPerSecond),
	).Build(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	report(progress, 4, "Preparing %s answers with %s", settings.Answer.Mode, llm.ModelName())
	retriever, err := NewRetriever(embedder, index, settings.Retrieval.TopK)
	if err != nil {
		return nil, err
	}
	temperature := settings.LLM.Temperature
	assembler := NewAssembler(llm, b.prompts, settings.Answer, driven.ChatOptions{
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: &temperature,
	})

	return &Pipeline{
		state:     domain.PipelineReady,
		retriever: retriever,
		assembler: assembler,
		embedder:  embedder,
		llm:       llm,
		stats: domain.IndexStats{
			Files:          countSources(records),
			Records:        len(records),
			Chunks:         index.Len(),
			EmbeddingModel: index.Model(),
			Dimensions:     index.Dimensions(),
			TopK:           settings.Retrieval.TopK,
			LLMModel:       llm.ModelName(),
			Mode:           settings.Answer.Mode.String(),
		},
	}, nil
}

// Inspect loads and splits the corpus without any collaborator.
func (b *PipelineBuilder) Inspect(ctx context.Context, settings *domain.AppSettings) (*domain.CorpusReport, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are nil", domain.ErrConfig)
	}
	if err := settings.ValidateCorpus(); err != nil {
		return nil, err
	}

	splitter, err := b.splitters.BuildPipeline(settings.Chunking.PipelineConfig())
	if err != nil {
		return nil, err
	}

	records, err := NewLoader(b.extractors, settings.Data.Extensions).Load(ctx, settings.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result := &domain.CorpusReport{
		Dir:       settings.Data.Dir,
		Records:   len(records),
		ChunkSize: settings.Chunking.ChunkSize,
		Overlap:   settings.Chunking.Overlap,
	}
	for i := range records {
		chunks, err := splitter.Process(ctx, &records[i])
		if err != nil {
			return nil, fmt.Errorf("split: %s: %w", records[i].Provenance.Citation(), err)
		}

		source := records[i].Provenance.Source
		if n := len(result.Files); n == 0 || result.Files[n-1].Source != source {
			result.Files = append(result.Files, domain.FileReport{Source: source})
		}
		file := &result.Files[len(result.Files)-1]
		file.Records++
		file.Chunks += len(chunks)
		for _, c := range chunks {
			file.MaxChunkLen = max(file.MaxChunkLen, utf8.RuneCountInString(c.Content))
		}
		result.Chunks += len(chunks)
	}

	return result, nil
}

func split(ctx context.Context, splitter driven.PostProcessorPipeline, records []domain.Record) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for i := range records {
		chunks, err := splitter.Process(ctx, &records[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", records[i].Provenance.Citation(), err)
		}
		all = append(all, chunks...)
	}
	logger.Debug("%d records produced %d chunks", len(records), len(all))
	return all, nil
}

func countSources(records []domain.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Provenance.Source] = struct{}{}
	}
	return len(seen)
}

func report(progress driving.ProgressFunc, step int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Debug("step %d/%d: %s", step, buildSteps, msg)
	if progress != nil {
		progress(step, buildSteps, msg)
	}
}
