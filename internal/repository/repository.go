// Package repository provides gorm-backed persistence for the service's
// aggregates. Implementations are safe for concurrent use; callers own
// transactional semantics (the portfolio repository exposes a
// compare-and-swap update for the optimistic-concurrency loop).
package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by conditional writes when the row
	// version changed between read and write.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)
