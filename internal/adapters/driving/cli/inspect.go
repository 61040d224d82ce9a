package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what would be indexed",
	Long: `Load and split the papers without embedding anything.

Prints the pages and chunks found per file. No API key is needed.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	if pipelineBuilder == nil {
		return errors.New("pipeline builder not configured")
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	report, err := pipelineBuilder.Inspect(cmd.Context(), settings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	width := len("File")
	for _, f := range report.Files {
		width = max(width, len(f.Source))
	}

	fmt.Fprintf(out, "Corpus: %s (chunk size %d, overlap %d)\n\n", report.Dir, report.ChunkSize, report.Overlap)
	fmt.Fprintf(out, "  %-*s  %6s  %6s  %8s\n", width, "File", "Pages", "Chunks", "Longest")
	for _, f := range report.Files {
		fmt.Fprintf(out, "  %-*s  %6d  %6d  %8d\n", width, f.Source, f.Records, f.Chunks, f.MaxChunkLen)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total: %d files, %d pages, %d chunks\n", len(report.Files), report.Records, report.Chunks)

	return nil
}
