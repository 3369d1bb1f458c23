package catalog

import "errors"

// Error taxonomy surfaced to the HTTP adapter. Cache faults are deliberately
// absent: they are absorbed by the gateway and never reach callers.
var (
	// ErrInvalidInput marks a constraint violation in a create payload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a reference to a book id that does not exist.
	ErrNotFound = errors.New("book not found")

	// ErrDuplicateISBN marks an insert that would violate ISBN uniqueness.
	ErrDuplicateISBN = errors.New("isbn already exists")
)
