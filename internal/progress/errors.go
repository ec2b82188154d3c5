package progress

import "errors"

var (
	// ErrMalformedInput is returned when an update is missing its user, deck or word key
	ErrMalformedInput = errors.New("malformed progress input")
	// ErrPersistenceRead is returned by mutations when the current document cannot be loaded
	ErrPersistenceRead = errors.New("failed to read progress")
	// ErrPersistenceWrite is returned when the mutated document could not be saved
	ErrPersistenceWrite = errors.New("failed to save progress")
)
