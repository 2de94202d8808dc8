package extract

import (
	"context"
	"time"

	"github.com/fwojciec/embedify"
)

var _ embedify.Fetcher = (*RetryFetcher)(nil)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFetcher retries transient fetch failures with backoff. Only EFETCH
// errors are retried; redirect loops, invalid URLs and cancellation are
// returned at once.
type RetryFetcher struct {
	Fetcher embedify.Fetcher

	// Delays holds the wait before each retry. One attempt is made per
	// delay after the first.
	Delays []time.Duration
}

// FetchDocument fetches uri, retrying after each delay on EFETCH.
func (f *RetryFetcher) FetchDocument(ctx context.Context, uri string) (*embedify.FetchResult, error) {
	for attempt := 0; ; attempt++ {
		result, err := f.Fetcher.FetchDocument(ctx, uri)
		if err == nil || embedify.ErrorCode(err) != embedify.EFETCH || attempt >= len(f.Delays) {
			return result, err
		}

		select {
		case <-ctx.Done():
			return nil, embedify.ContextError(ctx)
		case <-time.After(f.Delays[attempt]):
		}
	}
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.Fetcher.Close()
}
