// Package slog decorates embedify services with structured logging.
package slog
