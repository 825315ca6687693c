package csrf

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/openmarks/gradebook/pkg/token"
)

// Header is the custom request header carrying the session's CSRF secret.
// A cross-site attacker can force the browser to send cookies but cannot set
// this header or read the response body that delivered the secret.
const Header = "X-Grades-Csrf"

// LoginValue is the literal accepted in place of a secret by the login and
// logout entry points, which precede having a session.
const LoginValue = "login"

// ErrMissing is returned when a mutating request lacks a matching CSRF
// header. The caller does have a valid session, so this maps to a
// bad-request response rather than an unauthenticated one.
var ErrMissing = errors.New("csrf missing")

// Mutating reports whether the HTTP method changes state and therefore needs
// CSRF protection.
func Mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// Check validates the request's CSRF header against the session secret.
// Read-only methods pass unconditionally. Comparison is constant-time.
func Check(r *http.Request, secret token.Token) error {
	if !Mutating(r.Method) {
		return nil
	}
	header := r.Header.Get(Header)
	if header == "" {
		return ErrMissing
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(secret.String())) != 1 {
		return ErrMissing
	}
	return nil
}

// CheckLogin validates the header for the pre-session entry points, which
// must carry the literal LoginValue.
func CheckLogin(r *http.Request) error {
	if !Mutating(r.Method) {
		return nil
	}
	if r.Header.Get(Header) != LoginValue {
		return ErrMissing
	}
	return nil
}
