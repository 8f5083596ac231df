package repository

import "errors"

// ErrNotFound is returned when a record does not exist in its collection.
var ErrNotFound = errors.New("record not found")
