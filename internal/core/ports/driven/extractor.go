package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// Extractor turns one file into records.
// Each extractor handles a fixed set of file extensions.
type Extractor interface {
	// Extensions returns the lower-case file suffixes handled, with the dot.
	Extensions() []string

	// Extract reads the file at path and returns its records in page order.
	// Record sources may be left empty; the loader sets them.
	Extract(ctx context.Context, path string) ([]domain.Record, error)
}

// ExtractorRegistry selects the extractor for a file extension.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(e Extractor)

	// Get returns the extractor for ext, matched case-insensitively.
	Get(ext string) (Extractor, bool)

	// Extensions returns all registered extensions, sorted.
	Extensions() []string
}
