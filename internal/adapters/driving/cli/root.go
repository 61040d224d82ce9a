// Package cli provides the paperqa command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	settingsService driving.SettingsService
	pipelineBuilder driving.PipelineBuilder
)

var (
	verbose      bool
	flagDataDir  string
	flagTopK     int
	flagMode     string
	flagEvidence string
)

var rootCmd = &cobra.Command{
	Use:   "paperqa",
	Short: "Ask grounded questions about a folder of papers",
	Long: `paperqa loads the PDFs in a folder, splits them into chunks, embeds them
into an in-memory index and answers questions with seminar slide bullets,
a presenter script and verbatim evidence, every claim cited by file and page.

Configuration comes from ~/.paperqa/config.toml, then the environment
(a .env file in the working directory is read too), then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	flags.StringVarP(&flagDataDir, "data-dir", "d", "", "directory holding the papers")
	flags.IntVarP(&flagTopK, "top-k", "k", 0, "chunks retrieved per question")
	flags.StringVar(&flagMode, "mode", "", "answer mode: structured or freetext")
	flags.StringVar(&flagEvidence, "evidence-check", "", "evidence verification: off, flag or reject")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service used by all commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetPipelineBuilder sets the builder used by ask, inspect, tui and mcp.
func SetPipelineBuilder(b driving.PipelineBuilder) {
	pipelineBuilder = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// PrintError writes err as "[ERROR] <kind>: <message>".
func PrintError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s: %v\n", red("[ERROR]"), domain.ErrorKind(err), err)
	if errors.Is(err, domain.ErrConfig) {
		fmt.Fprintln(w, "Run 'paperqa settings' to review the configuration.")
	}
}

// loadSettings returns the effective settings with flag overrides applied.
func loadSettings(cmd *cobra.Command) (*domain.AppSettings, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		settings.Data.Dir = flagDataDir
	}
	if flags.Changed("top-k") {
		settings.Retrieval.TopK = flagTopK
	}
	if flags.Changed("mode") {
		settings.Answer.Mode = domain.AnswerMode(flagMode)
	}
	if flags.Changed("evidence-check") {
		settings.Answer.EvidenceCheck = domain.EvidenceCheck(flagEvidence)
	}

	return settings, nil
}

// buildPipeline loads settings and builds a ready pipeline, reporting
// progress on stderr.
func buildPipeline(cmd *cobra.Command) (driving.QuestionAnswerer, error) {
	if pipelineBuilder == nil {
		return nil, errors.New("pipeline builder not configured")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	qa, err := pipelineBuilder.Build(cmd.Context(), settings, func(step, total int, message string) {
		logger.Step(step, total, "%s", message)
	})
	if err != nil {
		return nil, err
	}

	stats := qa.Stats()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %d chunks from %d files (%d pages), %s answers with %s\n",
		green("[READY]"), stats.Chunks, stats.Files, stats.Records, stats.Mode, stats.LLMModel)

	return qa, nil
}
