// Package pdf extracts per-page text from PDF files.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads PDF files page by page.
// Each page becomes one record, including pages without text, so page
// numbers in citations always match the document.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file suffixes this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns one record per page with 1-based page numbers.
// Failures wrap domain.ErrExtraction and name the file.
func (e *Extractor) Extract(ctx context.Context, path string) (records []domain.Record, err error) {
	name := filepath.Base(path)

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%w: %s: %v", domain.ErrExtraction, name, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}
	defer f.Close()

	pages := reader.NumPage()
	logger.Debug("pdf: %s has %d pages", name, pages)

	records = make([]domain.Record, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := pageText(reader, i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", domain.ErrExtraction, name, i, err)
		}

		records = append(records, domain.Record{
			Text: text,
			Provenance: domain.Provenance{
				Source: name,
				Page:   domain.PageNumber(i),
			},
		})
	}

	return records, nil
}

func pageText(reader *pdf.Reader, n int) (string, error) {
	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
