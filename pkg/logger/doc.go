// Package logger provides log/slog attribute helpers shared across the
// application. Helpers return an empty slog.Attr for zero values (nil error,
// uuid.Nil), which slog drops silently, so call sites never need nil checks.
package logger
