package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if this provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// DataSettings locates the input documents.
type DataSettings struct {
	// Dir is the flat directory holding the documents.
	Dir string

	// Extensions are the file suffixes to load, matched case-insensitively.
	Extensions []string
}

// ChunkingSettings controls the recursive splitter.
type ChunkingSettings struct {
	// ChunkSize is the maximum characters per chunk.
	ChunkSize int

	// Overlap is the characters repeated between consecutive chunks.
	Overlap int
}

// PipelineConfig returns the post-processor pipeline configuration for
// these chunking settings.
func (c ChunkingSettings) PipelineConfig() PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.ProcessorConfigs["chunker"] = map[string]any{
		"chunk_size": c.ChunkSize,
		"overlap":    c.Overlap,
	}
	return cfg
}

// RetrievalSettings controls the retriever.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of chunks embedded per request.
	BatchSize int

	// RequestsPerSecond paces embedding requests; 0 means unlimited.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature.
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AnswerSettings controls the answer assembler.
type AnswerSettings struct {
	// Mode is the output discipline.
	Mode AnswerMode

	// EvidenceCheck controls verification of evidence quotes.
	EvidenceCheck EvidenceCheck
}

// AppSettings holds all application settings.
type AppSettings struct {
	Data      DataSettings
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Answer    AnswerSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultDataDir            = "data"
	DefaultChunkSize          = 1000
	DefaultChunkOverlap       = 200
	DefaultTopK               = 4
	DefaultTemperature        = 0.2
	DefaultMaxTokens          = 2048
	DefaultEmbeddingBatchSize = 64
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty and must come from the environment or config file.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Data: DataSettings{
			Dir:        DefaultDataDir,
			Extensions: []string{".pdf"},
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOpenAI,
			Model:     DefaultEmbeddingModels()[AIProviderOpenAI],
			BatchSize: DefaultEmbeddingBatchSize,
		},
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModels()[AIProviderOpenAI],
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Answer: AnswerSettings{
			Mode:          AnswerModeStructured,
			EvidenceCheck: EvidenceCheckFlag,
		},
	}
}

// Validate checks the settings without performing any I/O.
// Every failure wraps ErrConfig.
func (s *AppSettings) Validate() error {
	if err := s.ValidateCorpus(); err != nil {
		return err
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top k must be > 0, got %d", ErrConfig, s.Retrieval.TopK)
	}
	if s.Embedding.BatchSize < 0 {
		return fmt.Errorf("%w: embedding batch size must be >= 0, got %d", ErrConfig, s.Embedding.BatchSize)
	}
	if s.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding requests per second must be >= 0, got %g",
			ErrConfig, s.Embedding.RequestsPerSecond)
	}
	return s.validateProviders()
}

// ValidateCorpus checks only the settings needed to load and split
// documents, so a corpus can be inspected without API keys.
func (s *AppSettings) ValidateCorpus() error {
	if strings.TrimSpace(s.Data.Dir) == "" {
		return fmt.Errorf("%w: data directory is empty", ErrConfig)
	}
	if len(s.Data.Extensions) == 0 {
		return fmt.Errorf("%w: no file extensions configured", ErrConfig)
	}
	if s.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be > 0, got %d", ErrConfig, s.Chunking.ChunkSize)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.ChunkSize {
		return fmt.Errorf("%w: overlap must be >= 0 and < chunk size, got %d (chunk size %d)",
			ErrConfig, s.Chunking.Overlap, s.Chunking.ChunkSize)
	}
	return nil
}

func (s *AppSettings) validateProviders() error {
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfig, s.Embedding.Provider)
	}
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: %s does not support embeddings, use ollama or openai", ErrConfig, s.Embedding.Provider)
	}
	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: %s embeddings need an API key (set %s)",
			ErrConfig, s.Embedding.Provider, APIKeyEnv(s.Embedding.Provider))
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", ErrConfig, s.LLM.Provider)
	}
	if !s.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s LLM needs an API key (set %s)",
			ErrConfig, s.LLM.Provider, APIKeyEnv(s.LLM.Provider))
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2], got %g", ErrConfig, s.LLM.Temperature)
	}
	if !s.Answer.Mode.IsValid() {
		return fmt.Errorf("%w: unknown answer mode %q", ErrConfig, s.Answer.Mode)
	}
	if !s.Answer.EvidenceCheck.IsValid() {
		return fmt.Errorf("%w: unknown evidence check %q", ErrConfig, s.Answer.EvidenceCheck)
	}
	return nil
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func APIKeyEnv(p AIProvider) string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// changing this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
				"overlap":    DefaultChunkOverlap,
			},
		},
	}
}
