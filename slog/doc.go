// Package slog decorates docindex services with structured logging.
//
// Each decorator logs the operation name, its key fields, the duration and
// the returned error, then passes the result through unchanged.
package slog
