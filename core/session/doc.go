// Package session implements the session authentication and rotation engine.
//
// A session is an opaque random token mapped to a stored record carrying the
// owning user, an expiry, a persistence class and a per-session CSRF secret.
// The Resolver turns a raw cookie value into an authenticated Identity and a
// list of cookie directives, applying a fixed-order state machine:
//
//  1. no cookie: not logged in
//  2. unknown token: not logged in, clear the cookie
//  3. predecessor link set: lazily delete the retired predecessor row
//  4. expired: delete the row, clear the cookie
//  5. inside the renewal window and not yet rotated: issue a successor
//  6. successor link set: steer the cookie at the successor, but keep
//     authenticating with the presented row
//  7. load the user; a dangling user reference means not logged in
//
// Rotation keeps logins continuous without re-authentication and is
// race-tolerant by construction: a session whose rotation state is already
// RotatingTo is never rotated again, so any number of concurrent requests in
// the renewal window converge on a single successor. The retired row stays
// valid until expiry or lazy cleanup, so requests racing the rotation never
// lose the token they are currently using.
//
// All resolver reads and writes for one request must run inside a single
// store transaction (Transactor), so rotation writes commit atomically with
// the request's business mutation.
package session
