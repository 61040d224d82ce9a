package domain

import "strings"

// AnswerMode selects how the generation service is asked to shape its output.
type AnswerMode string

// Available answer modes.
const (
	// AnswerModeStructured asks for JSON matching the StructuredAnswer schema.
	AnswerModeStructured AnswerMode = "structured"

	// AnswerModeFreeText asks for [PPT]/[SCRIPT]/[EVIDENCE] sections and
	// returns the model output untouched.
	AnswerModeFreeText AnswerMode = "freetext"
)

// IsValid returns true if the mode is recognised.
func (m AnswerMode) IsValid() bool {
	return m == AnswerModeStructured || m == AnswerModeFreeText
}

// String returns the string representation.
func (m AnswerMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m AnswerMode) Description() string {
	switch m {
	case AnswerModeStructured:
		return "Structured (schema-constrained JSON)"
	case AnswerModeFreeText:
		return "Free text ([PPT]/[SCRIPT]/[EVIDENCE] sections)"
	default:
		return unknownDescription
	}
}

// EvidenceCheck controls post-generation verification of evidence quotes.
type EvidenceCheck string

// Available evidence check levels.
const (
	// EvidenceCheckOff skips verification.
	EvidenceCheckOff EvidenceCheck = "off"

	// EvidenceCheckFlag reports unverified quotes alongside the answer.
	EvidenceCheckFlag EvidenceCheck = "flag"

	// EvidenceCheckReject fails the question if any quote is unverified.
	EvidenceCheckReject EvidenceCheck = "reject"
)

// IsValid returns true if the level is recognised.
func (c EvidenceCheck) IsValid() bool {
	switch c {
	case EvidenceCheckOff, EvidenceCheckFlag, EvidenceCheckReject:
		return true
	default:
		return false
	}
}

// Bullet count bounds for a StructuredAnswer.
const (
	MinBullets = 3
	MaxBullets = 5
)

// BulletPoint is one slide bullet with its citation.
type BulletPoint struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Page    int    `json:"page"`
}

// StructuredAnswer is the schema-constrained presentation answer.
type StructuredAnswer struct {
	// Bullets holds 3 to 5 slide bullets.
	Bullets []BulletPoint `json:"bullets"`

	// Script is the narration that walks through the bullets.
	Script string `json:"script"`

	// Evidence holds quotes copied verbatim from the source text.
	Evidence []string `json:"evidence"`
}

// EvidenceReport lists which evidence quotes were found in the retrieved text.
type EvidenceReport struct {
	Verified   []string `json:"verified"`
	Unverified []string `json:"unverified"`
}

// AllVerified reports whether every quote was found.
func (r *EvidenceReport) AllVerified() bool {
	return r == nil || len(r.Unverified) == 0
}

// Answer is the result of one question.
type Answer struct {
	// Question is the trimmed question text.
	Question string `json:"question"`

	// Mode is the output discipline used.
	Mode AnswerMode `json:"mode"`

	// Text is the raw model output in free-text mode.
	Text string `json:"text,omitempty"`

	// Structured is the decoded answer in structured mode.
	Structured *StructuredAnswer `json:"structured,omitempty"`

	// Sources are the retrieved chunks, in the E1..Ek order used in the prompt.
	Sources []RetrievedChunk `json:"sources"`

	// Context is the formatted evidence block sent to the model.
	Context string `json:"-"`

	// Evidence is the verification report, nil when the check is off.
	Evidence *EvidenceReport `json:"evidence_report,omitempty"`
}

// Render returns a plain-text rendering of the answer.
// Free-text answers are returned unchanged.
func (a *Answer) Render() string {
	if a.Structured == nil {
		return a.Text
	}

	var b strings.Builder
	b.WriteString("[PPT]\n")
	for _, bullet := range a.Structured.Bullets {
		b.WriteString("- ")
		b.WriteString(bullet.Content)
		b.WriteString(" [")
		b.WriteString(Provenance{Source: bullet.Source, Page: PageNumber(bullet.Page)}.Citation())
		b.WriteString("]\n")
	}
	b.WriteString("\n[SCRIPT]\n")
	b.WriteString(a.Structured.Script)
	b.WriteString("\n\n[EVIDENCE]\n")
	for _, quote := range a.Structured.Evidence {
		b.WriteString("- \"")
		b.WriteString(quote)
		b.WriteString("\"\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
