package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openmarks/gradebook/core/credentials"
	"github.com/openmarks/gradebook/core/session"
	"github.com/openmarks/gradebook/pkg/logger"
	"github.com/openmarks/gradebook/pkg/token"
)

// Service composes the credential and session stores into the three external
// entry points: login, logout and password change. Like the resolver, every
// method must run inside one store transaction.
type Service struct {
	users    credentials.Store
	creds    *credentials.Service
	sessions session.Store
	cfg      session.Config
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates the auth service. A nil log discards output.
func NewService(users credentials.Store, creds *credentials.Service, sessions session.Store, cfg session.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		users:    users,
		creds:    creds,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Login verifies the credentials and forges a fresh session. An unknown login
// name and a wrong password are deliberately indistinguishable: both return
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, loginName, password string, persistent bool) (*session.Session, []session.CookieUpdate, error) {
	user, err := s.users.FindByLogin(ctx, loginName)
	if errors.Is(err, credentials.ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.creds.ValidatePassword(user, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.forge(ctx, user.UUID, persistent)
	if err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "user logged in",
		logger.UserID(user.UUID),
		slog.Bool("persistent", persistent),
	)
	return sess, []session.CookieUpdate{session.SetCookie(sess)}, nil
}

// Logout deletes the session named by the cookie together with both of its
// possible chain neighbors, and clears the cookie. Without a matching
// session it is a no-op.
func (s *Service) Logout(ctx context.Context, rawCookie string) ([]session.CookieUpdate, error) {
	if rawCookie == "" {
		return nil, nil
	}
	tok, err := token.Parse(rawCookie)
	if err != nil {
		return nil, nil
	}

	sess, err := s.sessions.Find(ctx, tok)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.deleteIgnoreMissing(ctx, sess.Token); err != nil {
		return nil, err
	}
	if pred, ok := sess.Rotation.Predecessor(); ok {
		if err := s.deleteIgnoreMissing(ctx, pred); err != nil {
			return nil, err
		}
	}
	if succ, ok := sess.Rotation.Successor(); ok {
		if err := s.deleteIgnoreMissing(ctx, succ); err != nil {
			return nil, err
		}
	}

	s.log.InfoContext(ctx, "user logged out", logger.UserID(sess.UserUUID))
	return []session.CookieUpdate{session.ClearCookie()}, nil
}

// ChangePassword verifies the old password, rewrites the credential, deletes
// every session the user holds and forges a replacement so the caller stays
// logged in. The session sweep is the defense against a compromised
// credential persisting through stolen session tokens.
func (s *Service) ChangePassword(ctx context.Context, userUUID uuid.UUID, oldPassword, newPassword string) (*session.Session, []session.CookieUpdate, error) {
	if oldPassword == newPassword {
		return nil, nil, credentials.ErrPasswordUnchanged
	}

	user, err := s.users.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.creds.ValidatePassword(user, oldPassword)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.rewritePassword(ctx, user, newPassword); err != nil {
		return nil, nil, err
	}

	sess, err := s.forge(ctx, user.UUID, false)
	if err != nil {
		return nil, nil, err
	}
	return sess, []session.CookieUpdate{session.SetCookie(sess)}, nil
}

// ForceChangePassword rewrites a user's credential without knowing the old
// password. Admin-only; the caller is responsible for authorization. The
// target user's sessions are invalidated and not replaced.
func (s *Service) ForceChangePassword(ctx context.Context, userUUID uuid.UUID, newPassword string) error {
	user, err := s.users.FindByUUID(ctx, userUUID)
	if err != nil {
		return err
	}
	return s.rewritePassword(ctx, user, newPassword)
}

func (s *Service) rewritePassword(ctx context.Context, user *credentials.User, newPassword string) error {
	if err := s.creds.ChangePassword(ctx, user, newPassword); err != nil {
		return err
	}

	deleted, err := s.sessions.DeleteByUser(ctx, user.UUID)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password changed",
		logger.UserID(user.UUID),
		logger.Count("sessions_invalidated", int(deleted)),
	)
	return nil
}

// forge inserts a fresh session and runs the eviction sweep, bounding stored
// sessions per (user, persistent) pair without a background job.
func (s *Service) forge(ctx context.Context, userUUID uuid.UUID, persistent bool) (*session.Session, error) {
	sess, err := session.New(userUUID, persistent, s.cfg.Lifetime(persistent), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Insert(ctx, sess); err != nil {
		return nil, err
	}

	newest, err := s.sessions.ListByUser(ctx, userUUID, persistent, s.cfg.MaxPerUser)
	if err != nil {
		return nil, err
	}
	if len(newest) >= s.cfg.MaxPerUser {
		cutoff := newest[len(newest)-1].Expires
		evicted, err := s.sessions.DeleteExpiringBefore(ctx, userUUID, persistent, cutoff)
		if err != nil {
			return nil, err
		}
		if evicted > 0 {
			s.log.DebugContext(ctx, "evicted old sessions",
				logger.UserID(userUUID),
				logger.Count("evicted", int(evicted)),
			)
		}
	}

	return sess, nil
}

func (s *Service) deleteIgnoreMissing(ctx context.Context, tok token.Token) error {
	if err := s.sessions.Delete(ctx, tok); err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

// WithNow overrides the service clock. Test helper.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}
