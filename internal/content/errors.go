package content

import "errors"

var (
	ErrNotFound          = errors.New("content: not found")
	ErrForbidden         = errors.New("content: forbidden")
	ErrInvalidTransition = errors.New("content: invalid status transition")
	ErrConflict          = errors.New("content: version conflict")
	ErrInvalidInput      = errors.New("content: invalid input")
)
