package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique key such as a user email is taken.
	ErrDuplicate = errors.New("entity already exists")
)
