// Package logging configures the process-wide structured logger on top of
// log/slog: level and format parsing, JSON or text handlers.
package logging
