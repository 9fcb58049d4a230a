package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic concurrency check fails
	ErrConflict = errors.New("conflict: entity was modified concurrently")

	// ErrInsufficientBalance is returned when a balance guard rejects an update
	ErrInsufficientBalance = errors.New("insufficient balance")
)
