// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package: JSON records in production, text
// records everywhere else, always written to the supplied writer (stderr
// for the failover engine, whose stdout belongs to the route announcer).
package logger
