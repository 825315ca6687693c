package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/openmarks/gradebook/pkg/token"
)

// Session is a stored authenticated client context, keyed by its token.
type Session struct {
	// Token is the unique random identifier carried in the cookie.
	Token token.Token

	// UserUUID is a weak reference to the owning user. The referenced user
	// may have been deleted; resolution treats that as "not logged in".
	UserUUID uuid.UUID

	Expires    time.Time
	Persistent bool

	// CSRFSecret is never placed in a cookie. It reaches the client only in
	// a response body and comes back in a request header.
	CSRFSecret token.Token

	// Rotation tracks the session's place in a rotation chain.
	Rotation Rotation
}

// New forges a fresh session for the given user with no rotation history.
func New(userUUID uuid.UUID, persistent bool, lifetime time.Duration, now time.Time) (*Session, error) {
	tok, err := token.New()
	if err != nil {
		return nil, err
	}
	csrf, err := token.New()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:      tok,
		UserUUID:   userUUID,
		Expires:    now.Add(lifetime),
		Persistent: persistent,
		CSRFSecret: csrf,
		Rotation:   Fresh(),
	}, nil
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}

// successor forges the replacement session created when s is rotated.
func (s *Session) successor(lifetime time.Duration, now time.Time) (*Session, error) {
	next, err := New(s.UserUUID, s.Persistent, lifetime, now)
	if err != nil {
		return nil, err
	}
	next.Rotation = RotatedFrom(s.Token)
	return next, nil
}

// rotationKind enumerates the three legal rotation states.
type rotationKind uint8

const (
	kindFresh rotationKind = iota
	kindRotatedFrom
	kindRotatingTo
)

// Rotation is a session's position in a rotation chain. It is one of three
// states: Fresh (no chain), RotatedFrom (this session replaced the linked
// predecessor, which is retired lazily), or RotatingTo (a successor with the
// linked token has already been issued; this session is never rotated again).
// A session cannot hold both links at once, which keeps the chain at two
// live members at most.
type Rotation struct {
	kind rotationKind
	link token.Token
}

// Fresh returns the no-chain rotation state.
func Fresh() Rotation {
	return Rotation{kind: kindFresh}
}

// RotatedFrom returns the state of a session that replaced predecessor.
func RotatedFrom(predecessor token.Token) Rotation {
	return Rotation{kind: kindRotatedFrom, link: predecessor}
}

// RotatingTo returns the state of a session whose successor has been issued.
func RotatingTo(successor token.Token) Rotation {
	return Rotation{kind: kindRotatingTo, link: successor}
}

// IsFresh reports whether the session carries no chain links.
func (r Rotation) IsFresh() bool {
	return r.kind == kindFresh
}

// Predecessor returns the retired predecessor's token, if any.
func (r Rotation) Predecessor() (token.Token, bool) {
	if r.kind != kindRotatedFrom {
		return nil, false
	}
	return r.link, true
}

// Successor returns the already-issued successor's token, if any.
func (r Rotation) Successor() (token.Token, bool) {
	if r.kind != kindRotatingTo {
		return nil, false
	}
	return r.link, true
}
