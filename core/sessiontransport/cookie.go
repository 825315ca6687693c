package sessiontransport

import (
	"net/http"
	"time"

	"github.com/openmarks/gradebook/core/session"
)

const (
	cookieName = "session"

	// secureCookieName carries the __Secure- prefix, which browsers only
	// accept over HTTPS with the Secure attribute set. Used in production so
	// a plaintext man-in-the-middle cannot plant a session cookie.
	secureCookieName = "__Secure-session"
)

// Codec serializes session cookie directives into Set-Cookie headers and
// reads the session cookie back out of requests.
type Codec struct {
	production bool
}

// NewCodec creates a codec. In production the cookie name gains the
// __Secure- prefix and the Secure attribute.
func NewCodec(production bool) *Codec {
	return &Codec{production: production}
}

// NewCodecFromConfig creates a codec from environment configuration.
func NewCodecFromConfig(cfg Config) *Codec {
	return NewCodec(cfg.IsProduction())
}

// Name returns the cookie name for this deployment.
func (c *Codec) Name() string {
	if c.production {
		return secureCookieName
	}
	return cookieName
}

// Read extracts the raw session cookie value from the request, or "" when
// the cookie is absent.
func (c *Codec) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Render turns one resolver directive into a Set-Cookie value.
func (c *Codec) Render(update session.CookieUpdate) *http.Cookie {
	if update.Clear {
		return &http.Cookie{
			Name:     c.Name(),
			Value:    "x",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   c.production,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
	}

	cookie := &http.Cookie{
		Name:     c.Name(),
		Value:    update.Token.String(),
		Path:     "/",
		Secure:   c.production,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Non-persistent sessions are session-scoped from the browser's point of
	// view even though the store enforces an absolute cap, so only
	// persistent cookies carry Expires.
	if update.Persistent {
		cookie.Expires = update.Expires
	}
	return cookie
}

// Write emits Set-Cookie headers for every directive, in order.
func (c *Codec) Write(w http.ResponseWriter, updates []session.CookieUpdate) {
	for _, update := range updates {
		http.SetCookie(w, c.Render(update))
	}
}
