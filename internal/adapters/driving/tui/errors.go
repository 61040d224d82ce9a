package tui

import "errors"

// ErrMissingAnswerer is returned when the question answerer is not provided.
var ErrMissingAnswerer = errors.New("tui: question answerer is required")
