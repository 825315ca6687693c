// Package sessiontransport serializes the session cookie.
//
// The cookie carries only the base64 session token, always HttpOnly with
// Path=/ and SameSite=Lax. In production the name becomes __Secure-session
// and the Secure attribute is set. Persistent sessions get an Expires
// attribute; transient ones stay browser-session-scoped. Clearing reuses the
// same name with an epoch expiry and Max-Age=0.
package sessiontransport
