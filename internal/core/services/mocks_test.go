package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// keywordEmbedder maps text to keyword counts over a fixed vocabulary.
// The last dimension is always 1 so no vector is zero.
type keywordEmbedder struct {
	mu         sync.Mutex
	vocabulary []string
	embedded   []string
	batches    []int
	err        error
	batchErr   error
	shortBatch bool
	closed     bool
}

func newKeywordEmbedder(vocabulary ...string) *keywordEmbedder {
	return &keywordEmbedder{vocabulary: vocabulary}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	text = strings.ToLower(text)
	vec := make([]float32, len(e.vocabulary)+1)
	for i, word := range e.vocabulary {
		vec[i] = float32(strings.Count(text, word))
	}
	vec[len(e.vocabulary)] = 1
	return vec
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.embedded = append(e.embedded, text)
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	e.batches = append(e.batches, len(texts))
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = e.vector(text)
	}
	if e.shortBatch && len(vecs) > 0 {
		vecs = vecs[:len(vecs)-1]
	}
	return vecs, nil
}

func (e *keywordEmbedder) Dimensions() int {
	return len(e.vocabulary) + 1
}

func (e *keywordEmbedder) ModelName() string {
	return "keyword-test"
}

func (e *keywordEmbedder) Ping(context.Context) error {
	return nil
}

func (e *keywordEmbedder) Close() error {
	e.closed = true
	return nil
}

func (e *keywordEmbedder) batchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.batches)
}

// scriptedLLM returns fixed replies and records what it was sent.
type scriptedLLM struct {
	mu         sync.Mutex
	reply      string
	structured string
	err        error
	messages   [][]driven.ChatMessage
	schemas    []driven.OutputSchema
	opts       []driven.ChatOptions
	chats      int
	closed     bool
}

func (l *scriptedLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chats++
	l.messages = append(l.messages, messages)
	l.opts = append(l.opts, opts)
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *scriptedLLM) GenerateStructured(
	_ context.Context,
	messages []driven.ChatMessage,
	schema driven.OutputSchema,
	opts driven.ChatOptions,
) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, messages)
	l.schemas = append(l.schemas, schema)
	l.opts = append(l.opts, opts)
	if l.err != nil {
		return "", l.err
	}
	return l.structured, nil
}

func (l *scriptedLLM) ModelName() string {
	return "scripted-test"
}

func (l *scriptedLLM) Ping(context.Context) error {
	return nil
}

func (l *scriptedLLM) Close() error {
	l.closed = true
	return nil
}

func (l *scriptedLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// mapPromptStore serves prompts from a map.
type mapPromptStore map[string]string

func defaultTestPrompts() mapPromptStore {
	return mapPromptStore{
		driven.PromptAnswerSystem:   "answer as json",
		driven.PromptFreeTextSystem: "answer with [PPT] [SCRIPT] [EVIDENCE]",
		driven.PromptAnswerUser:     "Q: %s\nE:\n%s",
	}
}

func (m mapPromptStore) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", errors.New("unknown prompt " + name)
	}
	return p, nil
}

func (m mapPromptStore) Reload() {}

// stubFactory hands out prepared collaborators.
type stubFactory struct {
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	embedderErr error
	llmErr      error
	created     int
}

func (f *stubFactory) CreateEmbeddingService(*domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	f.created++
	if f.embedderErr != nil {
		return nil, f.embedderErr
	}
	return f.embedder, nil
}

func (f *stubFactory) CreateLLMService(*domain.LLMSettings) (driven.LLMService, error) {
	f.created++
	if f.llmErr != nil {
		return nil, f.llmErr
	}
	return f.llm, nil
}

// stubExtractor returns canned records per file name.
type stubExtractor struct {
	exts    []string
	records map[string][]domain.Record
	err     error
	calls   []string
}

func (s *stubExtractor) Extensions() []string {
	return s.exts
}

func (s *stubExtractor) Extract(_ context.Context, path string) ([]domain.Record, error) {
	s.calls = append(s.calls, path)
	if s.err != nil {
		return nil, s.err
	}
	for name, recs := range s.records {
		if strings.HasSuffix(path, name) {
			out := make([]domain.Record, len(recs))
			copy(out, recs)
			return out, nil
		}
	}
	return []domain.Record{{Text: "text of " + path, Provenance: domain.Provenance{Page: 1}}}, nil
}

func makeChunks(texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         "c" + string(rune('a'+i)),
			Content:    text,
			Provenance: domain.Provenance{Source: "paper.pdf", Page: domain.PageNumber(i + 1)},
		}
	}
	return chunks
}

func retrieved(chunks ...domain.Chunk) []domain.RetrievedChunk {
	out := make([]domain.RetrievedChunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.RetrievedChunk{Chunk: c, Rank: i + 1, Score: 1}
	}
	return out
}
