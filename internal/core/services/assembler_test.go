package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

const validStructured = `{
  "bullets": [
    {"content": "Transformers drop recurrence", "source": "attention.pdf", "page": 1},
    {"content": "Self-attention relates positions", "source": "attention.pdf", "page": 2},
    {"content": "Training is parallel", "source": "attention.pdf", "page": 2}
  ],
  "script": "Today we look at the Transformer [attention.pdf | page 1].",
  "evidence": ["based solely on attention mechanisms"]
}`

func structuredSettings(check domain.EvidenceCheck) domain.AnswerSettings {
	return domain.AnswerSettings{Mode: domain.AnswerModeStructured, EvidenceCheck: check}
}

func TestFormatContext(t *testing.T) {
	chunks := retrieved(
		domain.Chunk{Content: "  first\nline\r\nsecond  ", Provenance: domain.Provenance{Source: "a.pdf", Page: 3}},
		domain.Chunk{Content: "no origin"},
	)

	got := FormatContext(chunks)

	assert.Equal(t,
		"[E1] [a.pdf | page 3] first line second\n"+
			"[E2] [unknown | page ?] no origin",
		got)
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Empty(t, FormatContext(nil))
}

func TestFormatContext_CapsChunk(t *testing.T) {
	long := strings.Repeat("é", MaxChunkChars+300)
	chunks := retrieved(domain.Chunk{Content: long, Provenance: domain.Provenance{Source: "a.pdf", Page: 1}})

	got := FormatContext(chunks)

	prefix := "[E1] [a.pdf | page 1] "
	require.True(t, strings.HasPrefix(got, prefix))
	assert.Equal(t, MaxChunkChars, utf8.RuneCountInString(strings.TrimPrefix(got, prefix)))
}

func TestFormatContext_CapsTotal(t *testing.T) {
	var chunks []domain.Chunk
	for i := 0; i < 15; i++ {
		chunks = append(chunks, domain.Chunk{Content: strings.Repeat("x", MaxChunkChars)})
	}

	got := FormatContext(retrieved(chunks...))

	assert.Equal(t, MaxContextChars, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "[E1] "))
}

func TestAssembler_FreeTextReturnsRawOutput(t *testing.T) {
	raw := "[PPT]\n- point [a.pdf | page 1]\n\n[SCRIPT]\nhello\n\n[EVIDENCE]\n- \"quote\"\n"
	llm := &scriptedLLM{reply: raw}
	settings := domain.AnswerSettings{Mode: domain.AnswerModeFreeText, EvidenceCheck: domain.EvidenceCheckReject}
	temperature := 0.3
	assembler := NewAssembler(llm, defaultTestPrompts(), settings, driven.ChatOptions{MaxTokens: 99, Temperature: &temperature})
	chunks := retrieved(makeChunks("some text")...)

	answer, err := assembler.Answer(context.Background(), "what?", chunks)

	require.NoError(t, err)
	assert.Equal(t, raw, answer.Text)
	assert.Equal(t, raw, answer.Render())
	assert.Nil(t, answer.Structured)
	assert.Nil(t, answer.Evidence)
	assert.Equal(t, chunks, answer.Sources)
	assert.Equal(t, 1, llm.chats)

	require.Len(t, llm.messages, 1)
	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Equal(t, "answer with [PPT] [SCRIPT] [EVIDENCE]", msgs[0].Content)
	assert.Equal(t, driven.RoleUser, msgs[1].Role)
	assert.Equal(t, "Q: what?\nE:\n[E1] [paper.pdf | page 1] some text", msgs[1].Content)
	require.NotNil(t, llm.opts[0].Temperature)
	assert.InDelta(t, 0.3, *llm.opts[0].Temperature, 1e-9)
	assert.Equal(t, 99, llm.opts[0].MaxTokens)
}

func TestAssembler_Structured(t *testing.T) {
	llm := &scriptedLLM{structured: validStructured}
	assembler := NewAssembler(llm, defaultTestPrompts(), structuredSettings(domain.EvidenceCheckFlag), driven.ChatOptions{})
	chunks := retrieved(domain.Chunk{
		Content:    "The Transformer is based solely on attention\nmechanisms, dispensing with recurrence.",
		Provenance: domain.Provenance{Source: "attention.pdf", Page: 1},
	})

	answer, err := assembler.Answer(context.Background(), "what is it?", chunks)

	require.NoError(t, err)
	require.NotNil(t, answer.Structured)
	assert.Len(t, answer.Structured.Bullets, 3)
	assert.Equal(t, "attention.pdf", answer.Structured.Bullets[0].Source)
	assert.Equal(t, 1, answer.Structured.Bullets[0].Page)
	require.NotNil(t, answer.Evidence)
	assert.True(t, answer.Evidence.AllVerified())
	assert.Equal(t, domain.AnswerModeStructured, answer.Mode)

	require.Len(t, llm.schemas, 1)
	assert.Equal(t, "structured_answer", llm.schemas[0].Name)
	assert.Equal(t, "answer as json", llm.messages[0][0].Content)
	assert.Zero(t, llm.chats)
}

func TestAssembler_EvidenceCheck(t *testing.T) {
	chunks := retrieved(makeChunks("nothing relevant here")...)

	t.Run("off", func(t *testing.T) {
		assembler := NewAssembler(&scriptedLLM{structured: validStructured}, defaultTestPrompts(),
			structuredSettings(domain.EvidenceCheckOff), driven.ChatOptions{})

		answer, err := assembler.Answer(context.Background(), "q", chunks)

		require.NoError(t, err)
		assert.Nil(t, answer.Evidence)
	})

	t.Run("flag", func(t *testing.T) {
		assembler := NewAssembler(&scriptedLLM{structured: validStructured}, defaultTestPrompts(),
			structuredSettings(domain.EvidenceCheckFlag), driven.ChatOptions{})

		answer, err := assembler.Answer(context.Background(), "q", chunks)

		require.NoError(t, err)
		require.NotNil(t, answer.Evidence)
		assert.Equal(t, []string{"based solely on attention mechanisms"}, answer.Evidence.Unverified)
	})

	t.Run("reject", func(t *testing.T) {
		assembler := NewAssembler(&scriptedLLM{structured: validStructured}, defaultTestPrompts(),
			structuredSettings(domain.EvidenceCheckReject), driven.ChatOptions{})

		_, err := assembler.Answer(context.Background(), "q", chunks)

		assert.ErrorIs(t, err, domain.ErrSchemaViolation)
	})
}

func TestAssembler_LLMFailure(t *testing.T) {
	for _, mode := range []domain.AnswerMode{domain.AnswerModeStructured, domain.AnswerModeFreeText} {
		t.Run(mode.String(), func(t *testing.T) {
			llm := &scriptedLLM{err: errors.New("connection refused")}
			assembler := NewAssembler(llm, defaultTestPrompts(),
				domain.AnswerSettings{Mode: mode, EvidenceCheck: domain.EvidenceCheckOff}, driven.ChatOptions{})

			_, err := assembler.Answer(context.Background(), "q", nil)

			require.ErrorIs(t, err, domain.ErrLLMUnavailable)
			assert.ErrorIs(t, err, domain.ErrCollaborator)
		})
	}
}

func TestAssembler_PromptErrors(t *testing.T) {
	t.Run("missing prompt", func(t *testing.T) {
		prompts := defaultTestPrompts()
		delete(prompts, driven.PromptAnswerSystem)
		llm := &scriptedLLM{structured: validStructured}
		assembler := NewAssembler(llm, prompts, structuredSettings(domain.EvidenceCheckOff), driven.ChatOptions{})

		_, err := assembler.Answer(context.Background(), "q", nil)

		require.ErrorIs(t, err, domain.ErrConfig)
		assert.Zero(t, llm.calls())
	})

	t.Run("wrong placeholder count", func(t *testing.T) {
		prompts := defaultTestPrompts()
		prompts[driven.PromptAnswerUser] = "only %s"
		llm := &scriptedLLM{structured: validStructured}
		assembler := NewAssembler(llm, prompts, structuredSettings(domain.EvidenceCheckOff), driven.ChatOptions{})

		_, err := assembler.Answer(context.Background(), "q", nil)

		require.ErrorIs(t, err, domain.ErrConfig)
		assert.Zero(t, llm.calls())
	})
}

func TestDecodeStructuredAnswer_Violations(t *testing.T) {
	bullet := `{"content": "c", "source": "s.pdf", "page": 1}`
	bullets := func(n int) string {
		items := make([]string, n)
		for i := range items {
			items[i] = bullet
		}
		return "[" + strings.Join(items, ",") + "]"
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "Here are your bullets"},
		{name: "empty", raw: ""},
		{name: "two bullets", raw: `{"bullets": ` + bullets(2) + `, "script": "s", "evidence": []}`},
		{name: "six bullets", raw: `{"bullets": ` + bullets(6) + `, "script": "s", "evidence": []}`},
		{name: "missing bullets", raw: `{"script": "s", "evidence": []}`},
		{name: "null bullets", raw: `{"bullets": null, "script": "s", "evidence": []}`},
		{name: "empty script", raw: `{"bullets": ` + bullets(3) + `, "script": " ", "evidence": []}`},
		{name: "unknown field", raw: `{"bullets": ` + bullets(3) + `, "script": "s", "evidence": [], "notes": "x"}`},
		{name: "trailing data", raw: `{"bullets": ` + bullets(3) + `, "script": "s", "evidence": []} {}`},
		{name: "page as string", raw: `{"bullets": [{"content": "c", "source": "s", "page": "1"}], "script": "s"}`},
		{name: "bullet without source", raw: `{"bullets": [` + bullet + `,` + bullet + `,{"content": "c", "source": "", "page": 1}], "script": "s"}`},
		{name: "bullet without content", raw: `{"bullets": [` + bullet + `,` + bullet + `,{"content": "", "source": "s", "page": 1}], "script": "s"}`},
		{name: "negative page", raw: `{"bullets": [` + bullet + `,` + bullet + `,{"content": "c", "source": "s", "page": -2}], "script": "s"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStructuredAnswer(tt.raw)
			assert.ErrorIs(t, err, domain.ErrSchemaViolation)
		})
	}
}

func TestDecodeStructuredAnswer_Accepts(t *testing.T) {
	t.Run("five bullets, missing evidence", func(t *testing.T) {
		raw := `{"bullets": [
			{"content": "1", "source": "s", "page": 1},
			{"content": "2", "source": "s", "page": 0},
			{"content": "3", "source": "s", "page": 2},
			{"content": "4", "source": "s", "page": 3},
			{"content": "5", "source": "s", "page": 4}
		], "script": "go"}` + "\n"

		answer, err := DecodeStructuredAnswer(raw)

		require.NoError(t, err)
		assert.Len(t, answer.Bullets, 5)
		assert.NotNil(t, answer.Evidence)
		assert.Empty(t, answer.Evidence)
	})

	t.Run("valid", func(t *testing.T) {
		answer, err := DecodeStructuredAnswer(validStructured)

		require.NoError(t, err)
		assert.Equal(t, "Today we look at the Transformer [attention.pdf | page 1].", answer.Script)
	})
}

func TestVerifyEvidence(t *testing.T) {
	chunks := retrieved(
		domain.Chunk{Content: "Alpha  beta\ngamma."},
		domain.Chunk{Content: "Delta epsilon"},
	)

	report := VerifyEvidence([]string{"beta gamma", "delta epsilon", "Delta epsilon", "", "zeta"}, chunks)

	assert.Equal(t, []string{"beta gamma", "Delta epsilon"}, report.Verified)
	assert.Equal(t, []string{"delta epsilon", "", "zeta"}, report.Unverified)
	assert.False(t, report.AllVerified())
}

func TestVerifyEvidence_NoQuotes(t *testing.T) {
	report := VerifyEvidence(nil, nil)

	assert.True(t, report.AllVerified())
	assert.Empty(t, report.Verified)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abc", 3, "abc"},
		{"cut", "abcdef", 4, "abcd"},
		{"multibyte within limit", "Größe", 5, "Größe"},
		{"multibyte cut", "Größe über", 6, "Größe "},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n))
		})
	}
}
