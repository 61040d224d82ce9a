// Package tui provides an interactive terminal user interface for paperqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answerer answers questions against the built index.
	Answerer driving.QuestionAnswerer
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answerer == nil {
		return ErrMissingAnswerer
	}
	return nil
}
