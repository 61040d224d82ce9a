// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// reservedLines is the height taken by the header, input and status bar.
const reservedLines = 11

// View is the question input, the answer pane and the status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	spinner   spinner.Model
	sources   *list.SourceList
	statusbar *status.Bar

	answerer driving.QuestionAnswerer
	ctx      context.Context

	width       int
	height      int
	ready       bool
	err         error
	focusInput  bool // true = typing a question, false = reading the answer
	thinking    bool
	question    string
	answer      *domain.Answer
	showSources bool
	showContext bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerer driving.QuestionAnswerer) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		viewport:    viewport.New(76, 10),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner)),
		sources:     list.NewSourceList(s),
		statusbar:   status.NewBar(s, km),
		answerer:    answerer,
		ctx:         context.Background(),
		width:       80,
		height:      24,
		focusInput:  true,
		showSources: true,
	}

	if answerer != nil {
		stats := answerer.Stats()
		v.statusbar.SetSummary(fmt.Sprintf("%d chunks from %d files, %s", stats.Chunks, stats.Files, stats.LLMModel))
	}

	return v
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		return v, v.submit(msg.Question)

	case messages.AnswerReceived:
		return v, v.handleAnswer(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Keys are ignored while the model is answering.
	if v.thinking {
		return v, nil
	}

	if v.focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			return v, v.submit(v.input.Question())
		case tea.KeyEsc:
			if v.answer != nil {
				v.focusAnswer()
			}
			return v, nil
		default:
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
	}

	keyStr := msg.String()
	switch {
	case msg.Type == tea.KeyEsc, keymap.Matches(keyStr, v.keymap.NewQuestion):
		return v, v.focusQuestion()
	case keymap.Matches(keyStr, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Context):
		v.showContext = !v.showContext
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// submit starts answering question, or reports an empty question.
func (v *View) submit(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" {
		v.setError(ErrEmptyQuestion)
		return nil
	}

	v.err = nil
	v.thinking = true
	v.question = question
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)

	return tea.Batch(v.spinner.Tick, v.ask(question))
}

// ask runs the question against the answerer off the update loop.
func (v *View) ask(question string) tea.Cmd {
	answerer := v.answerer
	ctx := v.ctx
	return func() tea.Msg {
		if answerer == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAnswerer}
		}
		answer, err := answerer.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// handleAnswer shows the answer, or the error with the question kept
// in the input for another try.
func (v *View) handleAnswer(msg messages.AnswerReceived) tea.Cmd {
	v.thinking = false

	if msg.Err != nil {
		v.setError(msg.Err)
		v.focusInput = true
		v.statusbar.SetTyping(true)
		return v.input.Focus()
	}

	v.err = nil
	v.answer = msg.Answer
	v.sources.SetSources(msg.Answer.Sources)
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	v.input.Reset()
	v.refresh()
	v.viewport.GotoTop()
	v.focusAnswer()
	return nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.ErrorKind(err))
}

func (v *View) focusAnswer() {
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetTyping(false)
}

func (v *View) focusQuestion() tea.Cmd {
	v.focusInput = true
	v.input.Reset()
	v.statusbar.SetTyping(true)
	return v.input.Focus()
}

// refresh re-renders the answer into the viewport.
func (v *View) refresh() {
	v.sources.SetWidth(v.viewport.Width)
	v.viewport.SetContent(v.renderAnswer())
}

func (v *View) renderAnswer() string {
	if v.answer == nil {
		return ""
	}

	wrap := lipgloss.NewStyle().Width(v.viewport.Width)
	sections := []string{
		v.styles.Title.Render("Q: ") + wrap.Render(v.answer.Question),
		"",
		v.renderBody(wrap),
	}

	if v.answer.Evidence != nil && !v.answer.Evidence.AllVerified() {
		sections = append(sections, "", v.styles.Warning.Render("Evidence not found in the retrieved text:"))
		for _, quote := range v.answer.Evidence.Unverified {
			sections = append(sections, v.styles.Warning.Render(fmt.Sprintf("  - %q", quote)))
		}
	}

	if v.showSources {
		sections = append(sections, "", v.sources.View())
	}

	if v.showContext {
		sections = append(sections, "", v.styles.Subtitle.Render("Context"), wrap.Render(v.answer.Context))
	}

	return strings.Join(sections, "\n")
}

func (v *View) renderBody(wrap lipgloss.Style) string {
	structured := v.answer.Structured
	if structured == nil {
		return wrap.Render(v.answer.Text)
	}

	lines := []string{v.styles.Subtitle.Render("[PPT]")}
	for _, b := range structured.Bullets {
		citation := domain.Provenance{Source: b.Source, Page: domain.PageNumber(b.Page)}.Citation()
		lines = append(lines, wrap.Render("- "+b.Content+" "+v.styles.Citation.Render("["+citation+"]")))
	}

	lines = append(lines, "", v.styles.Subtitle.Render("[SCRIPT]"), wrap.Render(structured.Script))

	lines = append(lines, "", v.styles.Subtitle.Render("[EVIDENCE]"))
	for _, quote := range structured.Evidence {
		lines = append(lines, wrap.Render(fmt.Sprintf("- %q", quote)))
	}

	return strings.Join(lines, "\n")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("paperqa"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch {
	case v.thinking:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Answering: "+v.question))
	case v.answer != nil:
		sections = append(sections, v.styles.Answer.Render(v.viewport.View()))
	default:
		sections = append(sections, v.styles.Muted.Render("Type a question about the papers and press enter."))
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	frame := v.styles.Answer.GetHorizontalFrameSize()
	v.viewport.Width = max(20, width-frame)
	v.viewport.Height = max(3, height-reservedLines)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Thinking returns whether a question is being answered.
func (v *View) Thinking() bool {
	return v.thinking
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Question returns the text in the question input.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the text in the question input.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// ShowSources returns whether the sources panel is shown.
func (v *View) ShowSources() bool {
	return v.showSources
}

// ShowContext returns whether the evidence block is shown.
func (v *View) ShowContext() bool {
	return v.showContext
}

// Content returns the rendered answer pane content.
func (v *View) Content() string {
	return v.renderAnswer()
}

// Reset clears the answer and focuses an empty input.
func (v *View) Reset() tea.Cmd {
	v.answer = nil
	v.err = nil
	v.thinking = false
	v.sources.SetSources(nil)
	v.statusbar.Clear()
	v.viewport.SetContent("")
	return v.focusQuestion()
}
