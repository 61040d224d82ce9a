package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View_Ready(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Contains(t, bar.View(), "Ready")

	bar.SetSummary("40 chunks from 2 files")
	assert.Contains(t, bar.View(), "Ready: 40 chunks from 2 files")
}

func TestStatusBar_View_States(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateThinking, "Thinking..."},
		{StateError, "Error"},
		{StateHelp, "Help"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetState(tt.state)
			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_View_ErrorWithMessage(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateError)
	bar.SetMessage("LLM unavailable")

	assert.Contains(t, bar.View(), "Error: LLM unavailable")
}

func TestStatusBar_View_Answered(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateAnswered)
	bar.SetSourceCount(4)

	assert.Contains(t, bar.View(), "Answered from 4 sources")
}

func TestStatusBar_View_HintsFollowFocus(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.Contains(t, bar.View(), "enter: ask")

	bar.SetTyping(false)
	view := bar.View()
	assert.Contains(t, view, "n: new question")
	assert.Contains(t, view, "quit")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetSummary("summary")
	bar.SetState(StateError)
	bar.SetMessage("error message")
	bar.SetSourceCount(10)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.SourceCount())
	assert.Contains(t, bar.View(), "summary")
}

func TestState_Constants(t *testing.T) {
	assert.Equal(t, State("ready"), StateReady)
	assert.Equal(t, State("thinking"), StateThinking)
	assert.Equal(t, State("answered"), StateAnswered)
	assert.Equal(t, State("error"), StateError)
	assert.Equal(t, State("help"), StateHelp)
}
