package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity already exists.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when a booking insert loses the overlap guard
	// against a concurrently committed booking.
	ErrConflict = errors.New("persistence: booking conflict")
	// ErrConstraintViolation is returned when stored data would violate a
	// check constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a record references a missing
	// or still-referenced row, e.g. deleting a schedule an event type uses.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
