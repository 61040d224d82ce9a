package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Context size limits, in characters.
const (
	MaxChunkChars   = 1200
	MaxContextChars = 12000
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// structuredAnswerSchema is the JSON Schema sent with structured requests.
// Bullet count bounds are stated in the description and checked on decode.
var structuredAnswerSchema = driven.OutputSchema{
	Name:        "structured_answer",
	Description: "Seminar presentation answer grounded in the supplied paper evidence.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bullets": map[string]any{
				"type":        "array",
				"description": "3 to 5 slide bullets, each citing the evidence line it is based on.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"content": map[string]any{"type": "string"},
						"source":  map[string]any{"type": "string"},
						"page":    map[string]any{"type": "integer"},
					},
					"required":             []string{"content", "source", "page"},
					"additionalProperties": false,
				},
			},
			"script": map[string]any{
				"type":        "string",
				"description": "Spoken-style presenter script walking through the bullets with citations.",
			},
			"evidence": map[string]any{
				"type":        "array",
				"description": "Sentences copied verbatim from the evidence text.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []string{"bullets", "script", "evidence"},
		"additionalProperties": false,
	},
}

// Assembler turns retrieved chunks into a grounded answer with one
// generation call.
type Assembler struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.AnswerSettings
	opts     driven.ChatOptions
}

// NewAssembler creates an answer assembler.
func NewAssembler(
	llm driven.LLMService,
	prompts driven.PromptStore,
	settings domain.AnswerSettings,
	opts driven.ChatOptions,
) *Assembler {
	return &Assembler{
		llm:      llm,
		prompts:  prompts,
		settings: settings,
		opts:     opts,
	}
}

// FormatContext renders chunks as numbered evidence lines:
//
//	[E<i>] [<source> | page <page>] <content>
//
// Content is trimmed, newlines become spaces and each chunk is capped at
// MaxChunkChars. The joined block is cut at MaxContextChars.
func FormatContext(chunks []domain.RetrievedChunk) string {
	lines := make([]string, len(chunks))
	for i, rc := range chunks {
		content := newlineReplacer.Replace(strings.TrimSpace(rc.Chunk.Content))
		lines[i] = fmt.Sprintf("[E%d] [%s] %s", i+1, rc.Chunk.Provenance.Citation(), truncateRunes(content, MaxChunkChars))
	}
	return truncateRunes(strings.Join(lines, "\n"), MaxContextChars)
}

// Answer asks the model to answer question from chunks.
func (a *Assembler) Answer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (*domain.Answer, error) {
	evidence := FormatContext(chunks)

	systemName := driven.PromptAnswerSystem
	if a.settings.Mode == domain.AnswerModeFreeText {
		systemName = driven.PromptFreeTextSystem
	}
	messages, err := a.messages(systemName, question, evidence)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		Question: question,
		Mode:     a.settings.Mode,
		Sources:  chunks,
		Context:  evidence,
	}

	logger.Debug("Generating %s answer from %d evidence lines (%d chars)", a.settings.Mode, len(chunks), len([]rune(evidence)))

	if a.settings.Mode == domain.AnswerModeFreeText {
		text, err := a.llm.Chat(ctx, messages, a.opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		answer.Text = text
		return answer, nil
	}

	raw, err := a.llm.GenerateStructured(ctx, messages, structuredAnswerSchema, a.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	structured, err := DecodeStructuredAnswer(raw)
	if err != nil {
		return nil, err
	}
	answer.Structured = structured

	if a.settings.EvidenceCheck != domain.EvidenceCheckOff {
		report := VerifyEvidence(structured.Evidence, chunks)
		if a.settings.EvidenceCheck == domain.EvidenceCheckReject && !report.AllVerified() {
			return nil, fmt.Errorf("%w: evidence not found in retrieved text: %q",
				domain.ErrSchemaViolation, report.Unverified)
		}
		answer.Evidence = report
	}

	return answer, nil
}

func (a *Assembler) messages(systemName, question, evidence string) ([]driven.ChatMessage, error) {
	system, err := a.prompts.Load(systemName)
	if err != nil {
		return nil, fmt.Errorf("%w: prompt %s: %w", domain.ErrConfig, systemName, err)
	}
	user, err := a.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return nil, fmt.Errorf("%w: prompt %s: %w", domain.ErrConfig, driven.PromptAnswerUser, err)
	}
	if strings.Count(user, "%s") != 2 {
		return nil, fmt.Errorf("%w: prompt %s must contain exactly two %%s placeholders",
			domain.ErrConfig, driven.PromptAnswerUser)
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, question, evidence)},
	}, nil
}

// DecodeStructuredAnswer strictly decodes and validates a structured reply.
// Unknown fields, trailing data, a bullet count outside 3 to 5, an empty
// script, or a bullet without content or source are schema violations.
func DecodeStructuredAnswer(raw string) (*domain.StructuredAnswer, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var answer domain.StructuredAnswer
	if err := dec.Decode(&answer); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrSchemaViolation, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the JSON object", domain.ErrSchemaViolation)
	}
	if answer.Bullets == nil {
		return nil, fmt.Errorf("%w: bullets are missing", domain.ErrSchemaViolation)
	}

	if n := len(answer.Bullets); n < domain.MinBullets || n > domain.MaxBullets {
		return nil, fmt.Errorf("%w: got %d bullets, want %d to %d",
			domain.ErrSchemaViolation, n, domain.MinBullets, domain.MaxBullets)
	}
	for i, b := range answer.Bullets {
		if strings.TrimSpace(b.Content) == "" {
			return nil, fmt.Errorf("%w: bullet %d has no content", domain.ErrSchemaViolation, i+1)
		}
		if strings.TrimSpace(b.Source) == "" {
			return nil, fmt.Errorf("%w: bullet %d has no source", domain.ErrSchemaViolation, i+1)
		}
		if b.Page < 0 {
			return nil, fmt.Errorf("%w: bullet %d has page %d", domain.ErrSchemaViolation, i+1, b.Page)
		}
	}
	if strings.TrimSpace(answer.Script) == "" {
		return nil, fmt.Errorf("%w: script is empty", domain.ErrSchemaViolation)
	}
	if answer.Evidence == nil {
		answer.Evidence = []string{}
	}

	return &answer, nil
}

// VerifyEvidence checks that each quote occurs in some retrieved chunk.
// Runs of whitespace compare equal, so line breaks in the source do not matter.
func VerifyEvidence(quotes []string, chunks []domain.RetrievedChunk) *domain.EvidenceReport {
	haystacks := make([]string, len(chunks))
	for i, rc := range chunks {
		haystacks[i] = collapseSpace(rc.Chunk.Content)
	}

	report := &domain.EvidenceReport{Verified: []string{}, Unverified: []string{}}
	for _, quote := range quotes {
		needle := collapseSpace(quote)
		found := false
		if needle != "" {
			for _, h := range haystacks {
				if strings.Contains(h, needle) {
					found = true
					break
				}
			}
		}
		if found {
			report.Verified = append(report.Verified, quote)
		} else {
			report.Unverified = append(report.Unverified, quote)
		}
	}
	return report
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes returns s cut to at most n characters (runes).
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
