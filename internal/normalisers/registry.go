package normalisers

import (
	"sort"
	"strings"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/normalisers/markdown"
	"github.com/custodia-labs/paperqa/internal/normalisers/pdf"
	"github.com/custodia-labs/paperqa/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lower-case file extensions to extractors.
type Registry struct {
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.Extractor),
	}
}

// DefaultRegistry returns a registry with the PDF, plain text and
// Markdown extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	return r
}

// Register adds e for each of its extensions, replacing earlier entries.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.extractors[NormaliseExtension(ext)] = e
	}
}

// Get returns the extractor for ext, matched case-insensitively.
func (r *Registry) Get(ext string) (driven.Extractor, bool) {
	e, ok := r.extractors[NormaliseExtension(ext)]
	return e, ok
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// NormaliseExtension lower-cases ext and ensures a leading dot.
func NormaliseExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
