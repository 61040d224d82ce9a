package mcp

import (
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answerer answers questions against the built index.
	Answerer driving.QuestionAnswerer
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answerer == nil {
		return ErrMissingAnswerer
	}
	return nil
}
