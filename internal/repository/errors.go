package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when a save is rejected because the
	// stored ride version advanced since it was read. Callers are expected
	// to re-read and retry.
	ErrVersionConflict = errors.New("ride version conflict")
)
