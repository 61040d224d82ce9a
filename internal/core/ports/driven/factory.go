package driven

import "github.com/custodia-labs/paperqa/internal/core/domain"

// AIServiceFactory creates AI collaborators from settings.
// Creation performs no network I/O.
type AIServiceFactory interface {
	// CreateEmbeddingService returns the embedding service for settings.
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateLLMService returns the LLM service for settings.
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)
}
