package driving

import "github.com/custodia-labs/paperqa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then the environment. Malformed values return domain.ErrConfig.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single config key.
	Set(key, value string) error

	// SetAPIKey stores the API key for provider in the config file.
	SetAPIKey(provider domain.AIProvider, apiKey string) error

	// Keys returns the settable config keys, sorted.
	Keys() []string

	// ConfigPath returns the config file location.
	ConfigPath() string

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured LLM provider.
	ValidateLLMConfig() error
}
