package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openmarks/gradebook/pkg/token"
)

// Store defines the persistence interface for session records.
// Implementations must map absent records to ErrNotFound and token uniqueness
// violations to ErrDuplicateToken.
type Store interface {
	Find(ctx context.Context, tok token.Token) (*Session, error)
	Insert(ctx context.Context, sess *Session) error
	// Replace overwrites the stored record with the same token.
	Replace(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, tok token.Token) error
	// DeleteByUser removes every session belonging to the user, regardless
	// of persistence class. Used on password change.
	DeleteByUser(ctx context.Context, userUUID uuid.UUID) (int64, error)
	// ListByUser returns up to limit sessions for the (user, persistent)
	// pair ordered by Expires descending. Used by the eviction sweep.
	ListByUser(ctx context.Context, userUUID uuid.UUID, persistent bool, limit int) ([]Session, error)
	// DeleteExpiringBefore removes the user's sessions of the given
	// persistence class whose Expires is strictly before cutoff.
	DeleteExpiringBefore(ctx context.Context, userUUID uuid.UUID, persistent bool, cutoff time.Time) (int64, error)
}

// Transactor runs fn as one atomic unit against the store. Everything the
// resolver writes during fn (successor inserts, link clears, deletions)
// commits or rolls back together with the caller's own store writes.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
