package library

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation (email, ISBN).
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput indicates the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates a book has no available copies.
	ErrUnavailable = errors.New("no copies available")
	// ErrRenewalLimit indicates a loan exhausted its renewals.
	ErrRenewalLimit = errors.New("renewal limit reached")
)
