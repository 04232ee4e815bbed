package domain

import "errors"

var (
	ErrNotFound = errors.New("brochure: not found")

	// ErrConflict signals a lost optimistic-concurrency race: the row
	// changed between read and write. At most one in-flight edit per
	// brochure wins.
	ErrConflict = errors.New("brochure: version conflict")
)
