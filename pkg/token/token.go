package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// Size is the length in bytes of session tokens and CSRF secrets.
// 128 bits of entropy keeps brute-forcing a live token infeasible while
// keeping cookie values short.
const Size = 16

// ErrGeneration is returned when the system's entropy source fails.
var ErrGeneration = errors.New("failed to generate random token")

// Token is an opaque random identifier. Tokens are compared byte-wise and
// travel base64-encoded (standard alphabet, as cookie values).
type Token []byte

// New produces a fresh cryptographically random token.
func New() (Token, error) {
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Join(ErrGeneration, err)
	}
	return Token(b), nil
}

// Parse decodes a base64 token as received in a cookie or header.
// Any decodable value is accepted here; whether it names a live session
// is the store's concern.
func Parse(s string) (Token, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Token(b), nil
}

// String returns the base64 form used on the wire.
func (t Token) String() string {
	return base64.StdEncoding.EncodeToString(t)
}

// Equal reports whether two tokens carry the same bytes.
func (t Token) Equal(other Token) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the token is unset.
func (t Token) IsZero() bool {
	return len(t) == 0
}
