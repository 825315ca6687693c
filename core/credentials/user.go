package credentials

import (
	"github.com/google/uuid"
)

// Role classifies what a user may do in the grade book.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleLearner    Role = "learner"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleLearner:
		return true
	}
	return false
}

// User is the stored user record, including credential material.
// Only this package reads PasswordHash and PasswordSalt.
type User struct {
	UUID         uuid.UUID
	LoginName    string
	Name         string
	Role         Role
	PasswordHash []byte
	PasswordSalt []byte
}

// Profile is the credential-free view of a user, safe to hand to the
// session layer and to clients. Store implementations must not populate
// it from credential fields.
type Profile struct {
	UUID uuid.UUID
	Name string
	Role Role
}

// Profile returns the credential-free view of the user.
func (u *User) Profile() Profile {
	return Profile{
		UUID: u.UUID,
		Name: u.Name,
		Role: u.Role,
	}
}
