package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewAsk, "ask"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_AskIsDefault(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewAsk, v)
}

func TestAnswerReceived(t *testing.T) {
	answer := &domain.Answer{Question: "why?", Text: "because"}

	ok := AnswerReceived{Question: "why?", Answer: answer}
	assert.Equal(t, answer, ok.Answer)
	assert.NoError(t, ok.Err)

	failed := AnswerReceived{Question: "why?", Err: errors.New("boom")}
	assert.Nil(t, failed.Answer)
	assert.EqualError(t, failed.Err, "boom")
}

func TestErrorOccurred(t *testing.T) {
	err := errors.New("test error")
	msg := ErrorOccurred{Err: err}
	assert.Equal(t, err, msg.Err)
}

func TestQuestionSubmitted(t *testing.T) {
	msg := QuestionSubmitted{Question: "what is attention?"}
	assert.Equal(t, "what is attention?", msg.Question)
}
