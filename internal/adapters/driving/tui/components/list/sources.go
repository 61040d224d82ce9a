// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperqa/internal/core/domain"
)

const minPreview = 20

// SourceList renders the chunks retrieved for an answer, one citation
// line and one preview line each.
type SourceList struct {
	sources []domain.RetrievedChunk
	styles  *styles.Styles
	width   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{styles: s, width: 80}
}

// View renders the list.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)*2+1)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))
	for _, rc := range l.sources {
		lines = append(lines, l.renderSource(rc))
	}
	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(rc domain.RetrievedChunk) string {
	head := fmt.Sprintf("[E%d] ", rc.Rank) +
		l.styles.Citation.Render(rc.Chunk.Provenance.Citation()) +
		l.styles.Muted.Render(fmt.Sprintf("  %.3f", rc.Score))

	preview := strings.Join(strings.Fields(rc.Chunk.Content), " ")
	maxLen := l.width - 6
	if maxLen < minPreview {
		maxLen = minPreview
	}
	if runes := []rune(preview); len(runes) > maxLen {
		preview = string(runes[:maxLen-3]) + "..."
	}

	return head + "\n" + l.styles.Muted.Render("    "+preview)
}

// SetSources replaces the listed chunks.
func (l *SourceList) SetSources(sources []domain.RetrievedChunk) {
	l.sources = sources
}

// Sources returns the listed chunks.
func (l *SourceList) Sources() []domain.RetrievedChunk {
	return l.sources
}

// SetWidth sets the render width.
func (l *SourceList) SetWidth(width int) {
	l.width = width
}

// Width returns the render width.
func (l *SourceList) Width() int {
	return l.width
}

// Count returns the number of listed chunks.
func (l *SourceList) Count() int {
	return len(l.sources)
}
