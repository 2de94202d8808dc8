package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/embedify"
)

// Ensure LoggingFetcher implements embedify.Fetcher.
var _ embedify.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   embedify.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next embedify.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchDocument logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) FetchDocument(ctx context.Context, uri string) (result *embedify.FetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", uri}
		if result != nil {
			attrs = append(attrs,
				"final_url", result.FinalURL,
				"status", result.Status,
				"bytes", len(result.Body),
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.FetchDocument(ctx, uri)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
