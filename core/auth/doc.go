// Package auth implements the login, logout and password-change use cases on
// top of the credential and session stores.
//
// Login bounds per-user session growth with an inline eviction sweep: after
// inserting the fresh session it keeps the newest sessions of the same
// persistence class (20 by default) and deletes the rest by expiry order.
// Password changes invalidate every session the user holds inside the same
// transaction that rewrites the credential.
package auth
