package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

const (
	promptText   = "question > "
	resultHeader = "========== RESULT =========="
	resultFooter = "============================"
	contextRule  = "---------- CONTEXT ----------"
)

var (
	askJSON        bool
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the papers",
	Long: `Build the index and answer a question.

With a question argument the answer is printed once. Without one an
interactive loop starts: type a question at the "question >" prompt,
and "exit" or Ctrl+D to quit. A failed question is reported and the
loop continues with the same index.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print answers as JSON")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the evidence block sent to the model")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if len(args) > 0 && question == "" {
		return fmt.Errorf("%w: the question is empty, please type a question", domain.ErrEmptyInput)
	}

	qa, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer qa.Close()

	if question != "" {
		answer, err := qa.Ask(cmd.Context(), question)
		if err != nil {
			return err
		}
		return printAnswer(cmd.OutOrStdout(), answer)
	}

	return askLoop(cmd, qa)
}

// askLoop reads questions until EOF, "exit" or cancellation.
// Question errors are printed and do not end the loop.
func askLoop(cmd *cobra.Command, qa driving.QuestionAnswerer) error {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	bold := color.New(color.Bold).SprintFunc()

	if isTerminal(in) {
		fmt.Fprintln(out, "Type a question and press Enter. Type 'exit' or press Ctrl+D to quit.")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, bold(promptText))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			fmt.Fprintln(out, "The question is empty, please type a question.")
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := qa.Ask(cmd.Context(), question)
		if err != nil {
			if ctxErr := cmd.Context().Err(); ctxErr != nil {
				return nil
			}
			PrintError(out, err)
			continue
		}
		if err := printAnswer(out, answer); err != nil {
			return err
		}
	}
}

func printAnswer(w io.Writer, answer *domain.Answer) error {
	if askShowContext {
		fmt.Fprintln(w, contextRule)
		fmt.Fprintln(w, answer.Context)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(w, cyan(resultHeader))
	fmt.Fprintln(w, answer.Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, rc := range answer.Sources {
		fmt.Fprintf(w, "  [E%d] %s %s\n", rc.Rank, rc.Chunk.Provenance.Citation(), faint(fmt.Sprintf("(%.3f)", rc.Score)))
	}
	if answer.Evidence != nil && !answer.Evidence.AllVerified() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, yellow("Evidence not found in the retrieved text:"))
		for _, quote := range answer.Evidence.Unverified {
			fmt.Fprintf(w, "  - %q\n", quote)
		}
	}
	fmt.Fprintln(w, cyan(resultFooter))
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
