package database

import "errors"

var (
	// ErrDuplicateURL is returned when an insert violates the unique
	// constraint on either the original URL or the short code.
	ErrDuplicateURL = errors.New("url already exists")
	// ErrURLNotFound is returned when no record matches the requested
	// short code or original URL.
	ErrURLNotFound = errors.New("url not found")
)
