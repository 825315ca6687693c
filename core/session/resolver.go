package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openmarks/gradebook/core/credentials"
	"github.com/openmarks/gradebook/pkg/logger"
	"github.com/openmarks/gradebook/pkg/token"
)

// Identity is the authenticated result of resolving a session cookie.
type Identity struct {
	UserUUID uuid.UUID
	Name     string
	Role     credentials.Role

	// CSRFSecret is the per-session secret the client must echo in the CSRF
	// header on mutating requests.
	CSRFSecret token.Token
}

// CookieUpdate is a directive for the transport layer: either clear the
// session cookie or point it at the given token.
type CookieUpdate struct {
	Clear      bool
	Token      token.Token
	Persistent bool
	Expires    time.Time
}

// SetCookie returns a directive pointing the client's cookie at sess.
func SetCookie(sess *Session) CookieUpdate {
	return CookieUpdate{
		Token:      sess.Token,
		Persistent: sess.Persistent,
		Expires:    sess.Expires,
	}
}

// ClearCookie returns a directive removing the client's session cookie.
func ClearCookie() CookieUpdate {
	return CookieUpdate{Clear: true}
}

// ProfileFinder is the slice of the credential store the resolver needs:
// a credential-free user lookup.
type ProfileFinder interface {
	FindProfile(ctx context.Context, id uuid.UUID) (*credentials.Profile, error)
}

// Resolver turns a raw cookie value into an authenticated identity, driving
// token rotation and lazy chain cleanup along the way. It must run inside a
// store transaction (see Transactor) so its writes commit atomically with the
// request's business mutation.
type Resolver struct {
	sessions Store
	users    ProfileFinder
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// NewResolver creates a resolver over the given stores.
// A nil log discards resolver debug output.
func NewResolver(sessions Store, users ProfileFinder, cfg Config, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		sessions: sessions,
		users:    users,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
}

// Resolve authenticates the request that presented rawCookie (the cookie
// value, or "" if the cookie was absent).
//
// On success it returns the identity plus any cookie directives the transport
// must emit. On failure it returns ErrNotLoggedIn alongside the directives
// (an unknown or expired token still produces a clearing directive). Store
// failures propagate as-is and abort the enclosing transaction.
//
// The checks run in a fixed order: predecessor retirement first, then expiry,
// then rotation, then the user lookup. Rotation never invalidates the token
// the current request presented; the pre-rotation row keeps authenticating
// until it expires or is lazily retired, which gives concurrent requests a
// grace window to pick up the new cookie.
func (r *Resolver) Resolve(ctx context.Context, rawCookie string) (Identity, []CookieUpdate, error) {
	if rawCookie == "" {
		return Identity{}, nil, ErrNotLoggedIn
	}

	tok, err := token.Parse(rawCookie)
	if err != nil {
		// Not a token we ever issued; get rid of it.
		return Identity{}, []CookieUpdate{ClearCookie()}, ErrNotLoggedIn
	}

	sess, err := r.sessions.Find(ctx, tok)
	if errors.Is(err, ErrNotFound) {
		// Sessions TTL out of the store on their own, so a stale client
		// cookie is an expected path, not an error.
		return Identity{}, []CookieUpdate{ClearCookie()}, ErrNotLoggedIn
	}
	if err != nil {
		return Identity{}, nil, err
	}

	// Lazy retirement: the first resolution after a rotation deletes the
	// predecessor row and drops the backlink. This runs before the expiry
	// check so the chain shrinks even when this session is already dead.
	if pred, ok := sess.Rotation.Predecessor(); ok {
		if err := r.sessions.Delete(ctx, pred); err != nil && !errors.Is(err, ErrNotFound) {
			return Identity{}, nil, err
		}
		sess.Rotation = Fresh()
		if err := r.sessions.Replace(ctx, sess); err != nil {
			return Identity{}, nil, err
		}
	}

	now := r.now()
	if sess.Expired(now) {
		if err := r.sessions.Delete(ctx, sess.Token); err != nil && !errors.Is(err, ErrNotFound) {
			return Identity{}, nil, err
		}
		return Identity{}, []CookieUpdate{ClearCookie()}, ErrNotLoggedIn
	}

	if sess.Rotation.IsFresh() && sess.Expires.Sub(now) < r.cfg.RenewWithin(sess.Persistent) {
		if err := r.rotate(ctx, sess, now); err != nil {
			return Identity{}, nil, err
		}
	}

	var updates []CookieUpdate
	if succ, ok := sess.Rotation.Successor(); ok {
		// Rotation already started, possibly by this request, possibly by a
		// concurrent one. Steer the client at the successor but keep
		// authenticating with the row it actually presented.
		next, err := r.sessions.Find(ctx, succ)
		switch {
		case err == nil:
			updates = append(updates, SetCookie(next))
		case errors.Is(err, ErrNotFound):
			// Successor already gone (logged out or expired); the current
			// row still carries this request.
		default:
			return Identity{}, nil, err
		}
	}

	profile, err := r.users.FindProfile(ctx, sess.UserUUID)
	if errors.Is(err, credentials.ErrUserNotFound) {
		// Deleted account with a stale session.
		if err := r.sessions.Delete(ctx, sess.Token); err != nil && !errors.Is(err, ErrNotFound) {
			return Identity{}, nil, err
		}
		return Identity{}, updates, ErrNotLoggedIn
	}
	if err != nil {
		return Identity{}, nil, err
	}

	return Identity{
		UserUUID:   profile.UUID,
		Name:       profile.Name,
		Role:       profile.Role,
		CSRFSecret: sess.CSRFSecret,
	}, updates, nil
}

// rotate issues the successor session and marks sess as rotating. Only one
// rotation is ever initiated per session: callers check that the rotation
// state is still Fresh before calling, and within a transaction the
// check-then-write pair is atomic, so concurrent racers converge on the one
// successor instead of minting their own.
func (r *Resolver) rotate(ctx context.Context, sess *Session, now time.Time) error {
	next, err := sess.successor(r.cfg.Lifetime(sess.Persistent), now)
	if err != nil {
		return err
	}
	if err := r.sessions.Insert(ctx, next); err != nil {
		return err
	}
	sess.Rotation = RotatingTo(next.Token)
	if err := r.sessions.Replace(ctx, sess); err != nil {
		return err
	}

	r.log.DebugContext(ctx, "session rotated",
		logger.UserID(sess.UserUUID),
		slog.Bool("persistent", sess.Persistent),
		slog.Time("expires", next.Expires),
	)
	return nil
}

// WithNow overrides the resolver's clock. Test helper.
func (r *Resolver) WithNow(now func() time.Time) *Resolver {
	r.now = now
	return r
}
