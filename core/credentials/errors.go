package credentials

import "errors"

var (
	// ErrDuplicateLogin is returned when creating a user whose login name
	// is already taken.
	ErrDuplicateLogin = errors.New("login name already exists")

	// ErrUserNotFound is returned when a lookup matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRole is returned when creating a user with an unknown role.
	ErrInvalidRole = errors.New("invalid user role")

	// ErrPasswordTooShort is returned when a new password is under 8 characters.
	ErrPasswordTooShort = errors.New("new password too small")

	// ErrPasswordTooLong is returned when a new password is over 64 characters.
	ErrPasswordTooLong = errors.New("new password too big")

	// ErrPasswordUnchanged is returned when a new password equals the old one.
	ErrPasswordUnchanged = errors.New("old password cannot be the same as new password")

	// ErrHashing is returned when the password hash could not be computed.
	ErrHashing = errors.New("failed to hash password")
)
