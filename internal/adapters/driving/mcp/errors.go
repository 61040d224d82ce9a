// Package mcp provides an MCP (Model Context Protocol) server adapter for paperqa.
// It lets AI assistants ask grounded questions about the loaded papers.
package mcp

import "errors"

// ErrMissingAnswerer is returned when no question answerer is provided.
var ErrMissingAnswerer = errors.New("mcp: question answerer is required")
