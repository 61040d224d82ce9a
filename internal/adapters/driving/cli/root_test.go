package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ask", "inspect", "settings", "tui", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	serve, _, err := rootCmd.Find([]string{"mcp", "serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("port"))
	assert.NotNil(t, serve.Flags().Lookup("http"))
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"verbose", "data-dir", "top-k", "mode", "evidence-check"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "d", flags.Lookup("data-dir").Shorthand)
	assert.Equal(t, "k", flags.Lookup("top-k").Shorthand)
}

func TestPrintError(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct {
		name     string
		err      error
		expected string
		hint     bool
	}{
		{
			name:     "config error",
			err:      fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrConfig),
			expected: "[ERROR] ConfigError: ",
			hint:     true,
		},
		{
			name:     "not found",
			err:      fmt.Errorf("load: %w: data", domain.ErrNotFound),
			expected: "[ERROR] NotFound: load: ",
		},
		{
			name:     "collaborator",
			err:      fmt.Errorf("generate: %w", domain.ErrLLMUnavailable),
			expected: "[ERROR] CollaboratorError: generate: ",
		},
		{
			name:     "plain",
			err:      errors.New("boom"),
			expected: "[ERROR] Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)

			PrintError(buf, tt.err)

			assert.Contains(t, buf.String(), tt.expected)
			if tt.hint {
				assert.Contains(t, buf.String(), "paperqa settings")
			} else {
				assert.NotContains(t, buf.String(), "paperqa settings")
			}
		})
	}
}

func TestSetters(t *testing.T) {
	prevVersion, prevSettings, prevBuilder := version, settingsService, pipelineBuilder
	defer func() { version, settingsService, pipelineBuilder = prevVersion, prevSettings, prevBuilder }()

	settings := newFakeSettings()
	builder := &fakeBuilder{}

	SetVersion("1.2.3")
	SetSettingsService(settings)
	SetPipelineBuilder(builder)

	assert.Equal(t, "1.2.3", version)
	assert.Equal(t, settings, settingsService)
	assert.Equal(t, builder, pipelineBuilder)
}

func TestMCPServe_BuildError(t *testing.T) {
	_, builder := setup(t)
	builder.buildErr = fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", domain.ErrConfig)

	_, _, err := execute(t, "", "mcp", "serve")

	require.ErrorIs(t, err, domain.ErrConfig)
}

func TestTUI_BuildError(t *testing.T) {
	_, builder := setup(t)
	builder.buildErr = fmt.Errorf("index: %w", domain.ErrEmbeddingUnavailable)

	_, _, err := execute(t, "", "tui")

	require.ErrorIs(t, err, domain.ErrCollaborator)
}
