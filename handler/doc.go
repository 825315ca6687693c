// Package handler exposes the session engine over HTTP.
//
// The auth endpoint (/api/login) carries the three external entry points as
// JSON commands: login, logout and change_password. Every other part of the
// application mounts its business logic through API.WithIdentity, which runs
// the full per-request sequence inside one store transaction: resolve the
// session cookie (driving rotation), enforce the CSRF guard on mutating
// verbs, invoke the business handler, then emit the accumulated cookie
// directives.
package handler
