package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Loader reads every matching file of a flat directory into records.
type Loader struct {
	extractors driven.ExtractorRegistry
	extensions []string
}

// NewLoader creates a loader for the given extensions.
// Extensions are matched case-insensitively; a missing leading dot is added.
func NewLoader(extractors driven.ExtractorRegistry, extensions []string) *Loader {
	normalised := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		normalised = append(normalised, normaliseExt(ext))
	}
	return &Loader{
		extractors: extractors,
		extensions: normalised,
	}
}

// Load returns the records of every matching file in dir.
// Files are visited in name order and subdirectories are ignored.
// Every record's source is the file's base name.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Record, error) {
	selected := make(map[string]driven.Extractor, len(l.extensions))
	for _, ext := range l.extensions {
		extractor, ok := l.extractors.Get(ext)
		if !ok {
			return nil, fmt.Errorf("%w: no extractor for %q files (supported: %s)",
				domain.ErrConfig, ext, strings.Join(l.extractors.Extensions(), ", "))
		}
		selected[ext] = extractor
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: data directory %s: %w", domain.ErrNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrNotFound, dir, err)
	}

	var records []domain.Record
	matched := 0
	for _, entry := range entries {
		extractor, ok := selected[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks so linked papers are loaded too.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		matched++

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Debug("Loading %s", entry.Name())
		fileRecords, err := extractor.Extract(ctx, path)
		if err != nil {
			if errors.Is(err, domain.ErrCollaborator) || errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("%s: %w", entry.Name(), err)
			}
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, entry.Name(), err)
		}

		for i := range fileRecords {
			fileRecords[i].Provenance.Source = entry.Name()
		}
		logger.Debug("  %d records", len(fileRecords))
		records = append(records, fileRecords...)
	}

	if matched == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s",
			domain.ErrEmptyInput, strings.Join(l.extensions, "/"), dir)
	}

	return records, nil
}

func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
