package credentials

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistence interface for user records.
// Implementations must map storage-level uniqueness violations on the login
// name to ErrDuplicateLogin and absent records to ErrUserNotFound.
type Store interface {
	Insert(ctx context.Context, user *User) error
	FindByLogin(ctx context.Context, loginName string) (*User, error)
	FindByUUID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindProfile looks up a user without fetching credential fields.
	FindProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt []byte) error
}
