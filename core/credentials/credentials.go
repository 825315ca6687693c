package credentials

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Changing them invalidates no stored hash because the
// salt and hash are recomputed together on every password change.
const (
	saltSize = 16
	keySize  = 64
	scryptN  = 1 << 14
	scryptR  = 8
	scryptP  = 1
)

// Password length policy, enforced on creation and change.
const (
	minPasswordLen = 8
	maxPasswordLen = 64
)

// Service creates users and verifies or replaces their credentials.
type Service struct {
	store Store
}

// NewService creates a credential service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateUser registers a new user with a freshly salted password hash.
// Returns ErrDuplicateLogin if the login name is taken.
func (s *Service) CreateUser(ctx context.Context, loginName, name, password string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, salt)
	if err != nil {
		return nil, err
	}

	user := &User{
		UUID:         uuid.New(),
		LoginName:    loginName,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		PasswordSalt: salt,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidatePassword recomputes the hash of the candidate with the user's
// stored salt and compares in constant time.
func (s *Service) ValidatePassword(user *User, candidate string) (bool, error) {
	hash, err := hashPassword(candidate, user.PasswordSalt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(hash, user.PasswordHash) == 1, nil
}

// ChangePassword replaces the user's hash and salt. Session invalidation for
// the user is the auth layer's responsibility and must happen in the same
// transaction.
func (s *Service) ChangePassword(ctx context.Context, user *User, newPassword string) error {
	if err := CheckPasswordPolicy(newPassword); err != nil {
		return err
	}

	salt, err := newSalt()
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword, salt)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, user.UUID, hash, salt)
}

// CheckPasswordPolicy validates password length bounds.
func CheckPasswordPolicy(password string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Join(ErrHashing, err)
	}
	return salt, nil
}

func hashPassword(password string, salt []byte) ([]byte, error) {
	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, errors.Join(ErrHashing, err)
	}
	return hash, nil
}
