package domain

import "errors"

// Error kinds surfaced by the study and practice operations. Callers match
// them with errors.Is; the wrapped message carries the detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrGeneration   = errors.New("generation failed")
	ErrIO           = errors.New("persistence failed")
)
