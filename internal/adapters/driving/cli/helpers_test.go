package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// fakeSettings implements driving.SettingsService for testing.
type fakeSettings struct {
	settings domain.AppSettings
	getErr   error
	setErr   error
	set      map[string]string
	apiKeys  map[domain.AIProvider]string
	embedErr error
	llmErr   error
}

func newFakeSettings() *fakeSettings {
	s := domain.DefaultAppSettings()
	s.Embedding.APIKey = "sk-test-embedding-key"
	s.LLM.APIKey = "sk-test-llm-key"
	return &fakeSettings{
		settings: s,
		set:      map[string]string{},
		apiKeys:  map[domain.AIProvider]string{},
	}
}

func (f *fakeSettings) Get() (*domain.AppSettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s := f.settings
	return &s, nil
}

func (f *fakeSettings) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.set[key] = value
	return nil
}

func (f *fakeSettings) SetAPIKey(provider domain.AIProvider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrConfig)
	}
	f.apiKeys[provider] = apiKey
	return nil
}

func (f *fakeSettings) Keys() []string {
	keys := []string{"data.dir", "retrieval.top_k", "answer.mode"}
	sort.Strings(keys)
	return keys
}

func (f *fakeSettings) ConfigPath() string { return "/home/test/.paperqa/config.toml" }

func (f *fakeSettings) ValidateEmbeddingConfig() error { return f.embedErr }

func (f *fakeSettings) ValidateLLMConfig() error { return f.llmErr }

// fakeAnswerer implements driving.QuestionAnswerer for testing.
type fakeAnswerer struct {
	answer    func(question string) *domain.Answer
	errs      map[string]error
	questions []string
	closed    bool
}

func (f *fakeAnswerer) Ask(_ context.Context, question string) (*domain.Answer, error) {
	f.questions = append(f.questions, question)
	if err := f.errs[question]; err != nil {
		return nil, err
	}
	if f.answer != nil {
		return f.answer(question), nil
	}
	return testAnswer(question), nil
}

func (f *fakeAnswerer) Retrieve(context.Context, string) ([]domain.RetrievedChunk, error) {
	return nil, nil
}

func (f *fakeAnswerer) FormatContext([]domain.RetrievedChunk) string { return "" }

func (f *fakeAnswerer) Stats() domain.IndexStats {
	return domain.IndexStats{Files: 2, Records: 9, Chunks: 31, LLMModel: "gpt-4o-mini", Mode: "structured"}
}

func (f *fakeAnswerer) State() domain.PipelineState { return domain.PipelineReady }

func (f *fakeAnswerer) Close() error {
	f.closed = true
	return nil
}

// fakeBuilder implements driving.PipelineBuilder for testing.
type fakeBuilder struct {
	qa         *fakeAnswerer
	buildErr   error
	report     *domain.CorpusReport
	inspectErr error
	settings   *domain.AppSettings
}

func (f *fakeBuilder) Build(
	_ context.Context,
	settings *domain.AppSettings,
	progress driving.ProgressFunc,
) (driving.QuestionAnswerer, error) {
	f.settings = settings
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if progress != nil {
		progress(1, 4, "Loading")
		progress(4, 4, "Indexing")
	}
	return f.qa, nil
}

func (f *fakeBuilder) Inspect(_ context.Context, settings *domain.AppSettings) (*domain.CorpusReport, error) {
	f.settings = settings
	if f.inspectErr != nil {
		return nil, f.inspectErr
	}
	return f.report, nil
}

func testAnswer(question string) *domain.Answer {
	return &domain.Answer{
		Question: question,
		Mode:     domain.AnswerModeStructured,
		Structured: &domain.StructuredAnswer{
			Bullets: []domain.BulletPoint{
				{Content: "Attention replaces recurrence", Source: "attention.pdf", Page: 2},
				{Content: "Training parallelises", Source: "attention.pdf", Page: 3},
				{Content: "Translation quality improves", Source: "attention.pdf", Page: 8},
			},
			Script:   "Today we cover attention.",
			Evidence: []string{"based solely on attention mechanisms"},
		},
		Sources: []domain.RetrievedChunk{{
			Chunk: domain.Chunk{
				Content:    "based solely on attention mechanisms",
				Provenance: domain.Provenance{Source: "attention.pdf", Page: 2},
			},
			Rank:  1,
			Score: 0.873,
		}},
		Context: "[E1] [attention.pdf | page 2] based solely on attention mechanisms",
	}
}

// setup installs fakes for the duration of the test.
func setup(t *testing.T) (*fakeSettings, *fakeBuilder) {
	t.Helper()

	settings := newFakeSettings()
	builder := &fakeBuilder{qa: &fakeAnswerer{}}

	prevSettings, prevBuilder, prevNoColor := settingsService, pipelineBuilder, color.NoColor
	settingsService, pipelineBuilder, color.NoColor = settings, builder, true
	t.Cleanup(func() {
		settingsService, pipelineBuilder, color.NoColor = prevSettings, prevBuilder, prevNoColor
	})

	return settings, builder
}

// execute runs the root command with args and stdin, returning stdout
// and stderr. Flags are reset first since cobra keeps them in package vars.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
