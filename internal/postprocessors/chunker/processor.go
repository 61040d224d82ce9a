// Package chunker provides a recursive, overlap-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order, coarsest first.
// The empty separator splits between any two characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// chunkNamespace seeds deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/paperqa/chunk"))

// Processor splits record text into overlapping chunks of at most
// chunkSize characters, preferring paragraph, line, sentence and word
// boundaries in that order.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// It returns domain.ErrConfig unless 0 <= overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0, got %d", domain.ErrConfig, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be >= 0 and < %d, got %d",
			domain.ErrConfig, p.chunkSize, p.overlap)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the record text into chunks.
// Input chunks are ignored; this processor creates new chunks from the record.
// Every chunk carries the record's provenance unchanged.
func (p *Processor) Process(ctx context.Context, record *domain.Record, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.Split(record.Text)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(record.Provenance, i),
			Content:    text,
			Provenance: record.Provenance,
			Position:   i,
		})
	}

	return chunks, nil
}

// Split returns the chunk texts for text.
// Text no longer than the chunk size is returned as a single chunk;
// empty text yields none.
func (p *Processor) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= p.chunkSize {
		return []string{text}
	}

	// The first chunk has no overlap prefix and may use the whole size.
	budget := p.chunkSize - p.overlap
	atoms := splitRecursive(runes, p.separators, budget)
	spans := mergeSpans(atoms, p.chunkSize, budget)

	out := make([]string, 0, len(spans))
	for i, s := range spans {
		start := s.start
		if i > 0 {
			start -= p.overlap
		}
		out = append(out, string(runes[start:s.end]))
	}
	return out
}

func chunkID(prov domain.Provenance, position int) string {
	name := prov.Source + "|" + strconv.Itoa(int(prov.Page)) + "|" + strconv.Itoa(position)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
