package session

import "errors"

var (
	// ErrNotFound is returned when a token matches no stored session.
	ErrNotFound = errors.New("session not found")

	// ErrNotLoggedIn is returned when a request carries no valid session.
	// Maps to an unauthenticated response.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrDuplicateToken is returned when inserting a session whose token is
	// already stored. Tokens are 128-bit random values, so hitting this
	// indicates a broken entropy source rather than bad luck.
	ErrDuplicateToken = errors.New("session token already exists")
)
