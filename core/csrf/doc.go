// Package csrf validates the per-session double-submission secret on
// state-changing requests.
//
// The secret is handed to the client only in an API response body and must be
// echoed back in the X-Grades-Csrf header on POST and PUT requests. A purely
// cookie-borne value could not provide this defense: a forged cross-site
// request submits cookies automatically, but the attacking origin can neither
// set custom headers on a simple request nor read the response body that
// carried the secret.
package csrf
