// Package token generates the opaque random identifiers used by the session
// engine: session tokens (cookie values) and per-session CSRF secrets.
//
// Tokens are 16 random bytes from crypto/rand, base64-encoded on the wire.
// They carry no structure and no signature; a token is meaningful only as a
// lookup key into the session store.
//
//	tok, err := token.New()
//	if err != nil {
//		// entropy source failure, treat as fatal
//	}
//	cookieValue := tok.String()
package token
