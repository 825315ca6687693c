// Package server provides the HTTP listener with graceful shutdown.
//
// Run blocks until the passed context is canceled, then drains in-flight
// requests within the configured shutdown timeout. Configuration comes from
// SERVER_* environment variables.
package server
