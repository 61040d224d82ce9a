package ask

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// Error definitions for the ask view.
var (
	// ErrNoAnswerer indicates that no question answerer was provided.
	ErrNoAnswerer = errors.New("question answerer is required")

	// ErrEmptyQuestion is shown when enter is pressed on a blank input.
	ErrEmptyQuestion = fmt.Errorf("%w: the question is empty, please type a question", domain.ErrEmptyInput)
)
