// Package credentials owns user records and password verification.
//
// Passwords are hashed with scrypt (N=16384, r=8, p=1, 64-byte key) under a
// per-user random 16-byte salt. Verification recomputes the hash and compares
// in constant time. The package never exposes hash or salt outside the User
// record; resolution-time lookups go through Profile, which carries no
// credential material.
//
// Session invalidation on password change is deliberately not implemented
// here: the auth package composes ChangePassword with session deletion inside
// one transaction.
package credentials
