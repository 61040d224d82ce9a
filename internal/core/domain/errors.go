package domain

import (
	"errors"
	"fmt"
)

// Pipeline errors. Every failure surfaced by the pipeline wraps exactly one
// of the five kinds below so callers can classify it with errors.Is.
var (
	// ErrConfig indicates a missing or invalid setting or credential.
	// Raised before any I/O takes place.
	ErrConfig = errors.New("configuration error")

	// ErrNotFound indicates the input directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyInput indicates there is nothing to work on: no matching files,
	// no chunks reaching the index builder, or an empty question.
	ErrEmptyInput = errors.New("empty input")

	// ErrCollaborator indicates an external service (PDF extraction,
	// embeddings, generation) was unreachable or rejected the input.
	ErrCollaborator = errors.New("collaborator error")

	// ErrSchemaViolation indicates structured output that does not match the
	// StructuredAnswer shape.
	ErrSchemaViolation = errors.New("schema violation")
)

// Collaborator errors, each an ErrCollaborator.
var (
	// ErrEmbeddingUnavailable indicates the embedding service failed.
	ErrEmbeddingUnavailable = fmt.Errorf("%w: embedding service unavailable", ErrCollaborator)

	// ErrLLMUnavailable indicates the generation service failed.
	ErrLLMUnavailable = fmt.Errorf("%w: LLM service unavailable", ErrCollaborator)

	// ErrExtraction indicates text could not be extracted from a file.
	ErrExtraction = fmt.Errorf("%w: text extraction failed", ErrCollaborator)
)

// ErrNotReady is returned when a question is asked of a pipeline that was
// never built.
var ErrNotReady = errors.New("pipeline not ready")

// ErrorKind returns the taxonomy name of err for display.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "ConfigError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrEmptyInput):
		return "EmptyInput"
	case errors.Is(err, ErrCollaborator):
		return "CollaboratorError"
	case errors.Is(err, ErrSchemaViolation):
		return "SchemaViolation"
	case errors.Is(err, ErrNotReady):
		return "NotReady"
	default:
		return "Error"
	}
}
