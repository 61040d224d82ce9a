// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService is the generation collaborator of the answer assembler.
//
// Implementations include:
//   - OpenAI (chat completions with json_schema response format)
//   - Anthropic (messages API)
//   - Ollama (local models, chat with format schema)
type LLMService interface {
	// Chat conducts a conversation and returns the raw reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// GenerateStructured asks for a reply conforming to schema and returns
	// the JSON text. Callers decode and validate it themselves.
	GenerateStructured(ctx context.Context, messages []ChatMessage, schema OutputSchema, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Nil leaves the provider default; zero is sent as zero.
	Temperature *float64
}

// OutputSchema describes the JSON document a structured generation must return.
type OutputSchema struct {
	// Name identifies the schema to the provider.
	Name string

	// Description tells the model what the document is for.
	Description string

	// Schema is the JSON Schema object.
	Schema map[string]any
}
