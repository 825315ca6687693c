package session

import "time"

// Config holds session lifetime and rotation settings.
//
// A session is rotated when it is presented with less than the renewal
// threshold left before expiry; the successor gets a full lifetime again.
// Non-persistent sessions are short-lived with aggressive renewal, persistent
// ones live up to a year between logins.
type Config struct {
	TransientLifetime    time.Duration `env:"SESSION_TRANSIENT_LIFETIME" envDefault:"24h"`
	TransientRenewWithin time.Duration `env:"SESSION_TRANSIENT_RENEW_WITHIN" envDefault:"12h"`

	PersistentLifetime    time.Duration `env:"SESSION_PERSISTENT_LIFETIME" envDefault:"8760h"`
	PersistentRenewWithin time.Duration `env:"SESSION_PERSISTENT_RENEW_WITHIN" envDefault:"24h"`

	// MaxPerUser bounds stored sessions per (user, persistent) pair; older
	// sessions are evicted by expiry order at login.
	MaxPerUser int `env:"SESSION_MAX_PER_USER" envDefault:"20"`
}

// DefaultConfig returns the production defaults: 24h/12h for transient
// sessions, 365d/24h for persistent ones, 20 retained sessions per pair.
func DefaultConfig() Config {
	return Config{
		TransientLifetime:     24 * time.Hour,
		TransientRenewWithin:  12 * time.Hour,
		PersistentLifetime:    365 * 24 * time.Hour,
		PersistentRenewWithin: 24 * time.Hour,
		MaxPerUser:            20,
	}
}

// Lifetime returns the full lifetime granted to a new or rotated session.
func (c Config) Lifetime(persistent bool) time.Duration {
	if persistent {
		return c.PersistentLifetime
	}
	return c.TransientLifetime
}

// RenewWithin returns the remaining-lifetime threshold under which a session
// is rotated.
func (c Config) RenewWithin(persistent bool) time.Duration {
	if persistent {
		return c.PersistentRenewWithin
	}
	return c.TransientRenewWithin
}
