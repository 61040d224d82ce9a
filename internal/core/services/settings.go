package services

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data.dir"
	keyDataExtensions   = "data.extensions"
	keyChunkSize        = "chunker.chunk_size"
	keyChunkOverlap     = "chunker.overlap"
	keyTopK             = "retrieval.top_k"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyAnswerMode       = "answer.mode"
	keyAnswerEvidence   = "answer.evidence_check"
	envOllamaHost       = "OLLAMA_HOST"
	defaultOllamaScheme = "http://"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindList
)

// settingValue holds a parsed value of any kind.
type settingValue struct {
	str  string
	num  int
	flt  float64
	list []string
}

// typed returns the value as it is written to the config file.
func (v settingValue) typed(kind settingKind) any {
	switch kind {
	case kindInt:
		return v.num
	case kindFloat:
		return v.flt
	case kindList:
		return v.list
	default:
		return v.str
	}
}

// setting describes one config key.
// API keys have no env entry; their variable depends on the provider.
type setting struct {
	key   string
	env   string
	kind  settingKind
	check func(settingValue) error
	apply func(*domain.AppSettings, settingValue)
}

var settingTable = []setting{
	{key: keyDataDir, env: "DATA_DIR", kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.Data.Dir = v.str }},
	{key: keyDataExtensions, env: "FILE_EXTENSIONS", kind: kindList,
		apply: func(s *domain.AppSettings, v settingValue) { s.Data.Extensions = v.list }},
	{key: keyChunkSize, env: "CHUNK_SIZE", kind: kindInt,
		apply: func(s *domain.AppSettings, v settingValue) { s.Chunking.ChunkSize = v.num }},
	{key: keyChunkOverlap, env: "CHUNK_OVERLAP", kind: kindInt,
		apply: func(s *domain.AppSettings, v settingValue) { s.Chunking.Overlap = v.num }},
	{key: keyTopK, env: "TOP_K", kind: kindInt,
		apply: func(s *domain.AppSettings, v settingValue) { s.Retrieval.TopK = v.num }},
	{key: keyEmbedProvider, env: "EMBEDDING_PROVIDER", kind: kindString, check: checkProvider,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.Provider = domain.AIProvider(v.str) }},
	{key: keyEmbedModel, env: "EMBEDDING_MODEL", kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.Model = v.str }},
	{key: keyEmbedBaseURL, env: "EMBEDDING_BASE_URL", kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.BaseURL = v.str }},
	{key: keyEmbedAPIKey, kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.APIKey = v.str }},
	{key: keyEmbedBatchSize, env: "EMBEDDING_BATCH_SIZE", kind: kindInt,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.BatchSize = v.num }},
	{key: keyEmbedRPS, env: "EMBEDDING_RPS", kind: kindFloat,
		apply: func(s *domain.AppSettings, v settingValue) { s.Embedding.RequestsPerSecond = v.flt }},
	{key: keyLLMProvider, env: "LLM_PROVIDER", kind: kindString, check: checkProvider,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.Provider = domain.AIProvider(v.str) }},
	{key: keyLLMModel, env: "LLM_MODEL", kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.Model = v.str }},
	{key: keyLLMBaseURL, env: "LLM_BASE_URL", kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.BaseURL = v.str }},
	{key: keyLLMAPIKey, kind: kindString,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.APIKey = v.str }},
	{key: keyLLMTemperature, env: "LLM_TEMPERATURE", kind: kindFloat,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.Temperature = v.flt }},
	{key: keyLLMMaxTokens, env: "LLM_MAX_TOKENS", kind: kindInt,
		apply: func(s *domain.AppSettings, v settingValue) { s.LLM.MaxTokens = v.num }},
	{key: keyAnswerMode, env: "ANSWER_MODE", kind: kindString, check: checkAnswerMode,
		apply: func(s *domain.AppSettings, v settingValue) { s.Answer.Mode = domain.AnswerMode(v.str) }},
	{key: keyAnswerEvidence, env: "EVIDENCE_CHECK", kind: kindString, check: checkEvidence,
		apply: func(s *domain.AppSettings, v settingValue) { s.Answer.EvidenceCheck = domain.EvidenceCheck(v.str) }},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settingTable {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

func checkProvider(v settingValue) error {
	if !domain.AIProvider(v.str).IsValid() {
		return fmt.Errorf("unknown provider %q (use ollama, openai or anthropic)", v.str)
	}
	return nil
}

func checkAnswerMode(v settingValue) error {
	if !domain.AnswerMode(v.str).IsValid() {
		return fmt.Errorf("unknown answer mode %q (use structured or freetext)", v.str)
	}
	return nil
}

func checkEvidence(v settingValue) error {
	if !domain.EvidenceCheck(v.str).IsValid() {
		return fmt.Errorf("unknown evidence check %q (use off, flag or reject)", v.str)
	}
	return nil
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	env         driven.Environment
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// env may be nil, in which case only the config file is consulted.
func NewSettingsService(
	configStore driven.ConfigStore,
	env driven.Environment,
	aiValidator driven.AIConfigValidator,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		env:         env,
		aiValidator: aiValidator,
	}
}

// Get returns the effective settings: defaults, then the config file, then
// the environment. Models follow their provider unless set explicitly.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	result := domain.DefaultAppSettings()
	explicit := make(map[string]bool)

	for _, st := range settingTable {
		if raw, ok := s.configStore.Get(st.key); ok {
			v, err := fromFile(st.kind, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s in %s: %w", domain.ErrConfig, st.key, s.configStore.Path(), err)
			}
			st.apply(&result, v)
			explicit[st.key] = true
		}

		if raw, ok := s.lookupEnv(st.env); ok {
			v, err := parseSetting(st.kind, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s from $%s: %w", domain.ErrConfig, st.key, st.env, err)
			}
			st.apply(&result, v)
			explicit[st.key] = true
		}
	}

	if !explicit[keyEmbedModel] {
		result.Embedding.Model = domain.DefaultEmbeddingModels()[result.Embedding.Provider]
	}
	if !explicit[keyLLMModel] {
		result.LLM.Model = domain.DefaultLLMModels()[result.LLM.Provider]
	}

	if key, ok := s.lookupEnv(domain.APIKeyEnv(result.Embedding.Provider)); ok {
		result.Embedding.APIKey = key
	}
	if key, ok := s.lookupEnv(domain.APIKeyEnv(result.LLM.Provider)); ok {
		result.LLM.APIKey = key
	}

	if host, ok := s.lookupEnv(envOllamaHost); ok {
		if result.Embedding.Provider == domain.AIProviderOllama && result.Embedding.BaseURL == "" {
			result.Embedding.BaseURL = ollamaURL(host)
		}
		if result.LLM.Provider == domain.AIProviderOllama && result.LLM.BaseURL == "" {
			result.LLM.BaseURL = ollamaURL(host)
		}
	}

	return &result, nil
}

// Set validates value for key and persists it with the key's type.
func (s *SettingsService) Set(key, value string) error {
	st, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrConfig, key, strings.Join(s.Keys(), ", "))
	}

	v, err := parseSetting(st.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfig, key, err)
	}
	if st.check != nil {
		if err := st.check(v); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrConfig, key, err)
		}
	}

	if err := s.configStore.Set(key, v.typed(st.kind)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the API key for provider. An OpenAI key serves both
// embeddings and generation.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrConfig)
	}

	var keys []string
	switch provider {
	case domain.AIProviderOpenAI:
		keys = []string{keyEmbedAPIKey, keyLLMAPIKey}
	case domain.AIProviderAnthropic:
		keys = []string{keyLLMAPIKey}
	default:
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrConfig, provider)
	}

	for _, key := range keys {
		if err := s.configStore.Set(key, apiKey); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Keys returns the settable config keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingTable))
	for i, st := range settingTable {
		keys[i] = st.key
	}
	slices.Sort(keys)
	return keys
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// lookupEnv treats empty values as unset.
func (s *SettingsService) lookupEnv(key string) (string, bool) {
	if s.env == nil || key == "" {
		return "", false
	}
	val, ok := s.env.Lookup(key)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

// parseSetting parses a textual value from the environment or command line.
func parseSetting(kind settingKind, raw string) (settingValue, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return settingValue{}, fmt.Errorf("%q is not an integer", raw)
		}
		return settingValue{num: n}, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return settingValue{}, fmt.Errorf("%q is not a number", raw)
		}
		return settingValue{flt: f}, nil
	case kindList:
		return settingValue{list: splitList(raw)}, nil
	default:
		return settingValue{str: raw}, nil
	}
}

// fromFile converts a decoded TOML value.
func fromFile(kind settingKind, raw any) (settingValue, error) {
	switch kind {
	case kindInt:
		switch v := raw.(type) {
		case int:
			return settingValue{num: v}, nil
		case int64:
			return settingValue{num: int(v)}, nil
		case string:
			return parseSetting(kind, v)
		}
		return settingValue{}, fmt.Errorf("want an integer, got %T", raw)
	case kindFloat:
		switch v := raw.(type) {
		case float64:
			return settingValue{flt: v}, nil
		case int:
			return settingValue{flt: float64(v)}, nil
		case int64:
			return settingValue{flt: float64(v)}, nil
		case string:
			return parseSetting(kind, v)
		}
		return settingValue{}, fmt.Errorf("want a number, got %T", raw)
	case kindList:
		switch v := raw.(type) {
		case []string:
			return settingValue{list: v}, nil
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return settingValue{}, fmt.Errorf("want a list of strings, got %T item", item)
				}
				list = append(list, str)
			}
			return settingValue{list: list}, nil
		case string:
			return parseSetting(kind, v)
		}
		return settingValue{}, fmt.Errorf("want a list of strings, got %T", raw)
	default:
		str, ok := raw.(string)
		if !ok {
			return settingValue{}, fmt.Errorf("want a string, got %T", raw)
		}
		return settingValue{str: strings.TrimSpace(str)}, nil
	}
}

func splitList(raw string) []string {
	var list []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func ollamaURL(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return defaultOllamaScheme + host
}
