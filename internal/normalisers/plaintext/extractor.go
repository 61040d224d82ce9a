// Package plaintext extracts text files as single records.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file suffixes this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text"}
}

// Extract returns the whole file as one record with an unknown page.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}

	return []domain.Record{{
		Text: string(content),
		Provenance: domain.Provenance{
			Source: name,
			Page:   domain.UnknownPage,
		},
	}}, nil
}
