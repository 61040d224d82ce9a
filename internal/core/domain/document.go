package domain

import "strconv"

// PageNumber is a 1-based page number within a source file.
// The zero value is UnknownPage.
type PageNumber int

// UnknownPage marks a record whose page is not known, such as a plain text file.
const UnknownPage PageNumber = 0

// Known reports whether the page number is set.
func (p PageNumber) Known() bool {
	return p > 0
}

// String renders the page for citations; unknown pages render as "?".
func (p PageNumber) String() string {
	if !p.Known() {
		return "?"
	}
	return strconv.Itoa(int(p))
}

// unknownSource is rendered when a provenance has no source name.
const unknownSource = "unknown"

// Provenance identifies where a piece of text came from.
type Provenance struct {
	// Source is the base name of the originating file.
	Source string `json:"source"`

	// Page is the page within Source.
	Page PageNumber `json:"page"`
}

// SourceName returns Source, or "unknown" if it is empty.
func (p Provenance) SourceName() string {
	if p.Source == "" {
		return unknownSource
	}
	return p.Source
}

// Citation renders the provenance as "<source> | page <page>".
func (p Provenance) Citation() string {
	return p.SourceName() + " | page " + p.Page.String()
}

// Record is one extracted unit of a source file, typically a page.
// Records are created by the loader and never modified afterwards.
type Record struct {
	// Text is the raw extracted content.
	Text string `json:"text"`

	// Provenance is the origin of Text.
	Provenance Provenance `json:"provenance"`
}

// Chunk is a bounded window of a record's text.
// It carries its parent record's provenance unchanged, even when the
// window's overlap spans text that came before it on the page.
type Chunk struct {
	// ID is a deterministic identifier derived from provenance and position.
	ID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Provenance is copied from the parent record.
	Provenance Provenance `json:"provenance"`

	// Position is the zero-based index of the chunk within its record.
	Position int `json:"position"`
}
