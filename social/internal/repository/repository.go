package repository

import "errors"

// ErrNotFound is returned when a requested user record is not found.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a transactional update keeps losing against
// concurrent writers after the store's internal retries.
var ErrConflict = errors.New("transaction conflict")
