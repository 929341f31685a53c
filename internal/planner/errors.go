package planner

import "errors"

var (
	// ErrIndexOutOfRange is returned when a stop index is outside the current stop list.
	ErrIndexOutOfRange = errors.New("stop index out of range")

	// ErrInvalidCost is returned for negative or non-finite costs.
	ErrInvalidCost = errors.New("cost must be a non-negative amount")

	// ErrValidation is returned when a trip cannot be saved as it stands.
	ErrValidation = errors.New("trip validation failed")

	// ErrNotFound is returned when the backend has no such trip or stop.
	ErrNotFound = errors.New("not found")

	// ErrStale is returned when a result was computed for a stop sequence that has since changed.
	ErrStale = errors.New("result superseded by a newer stop sequence")
)
