// Package logger provides structured logging for the application.
//
// It builds on log/slog with a JSON handler, carries request-scoped loggers
// through context.Context, and scrubs credentials from error attributes
// before they are written.
package logger
