package mock

import (
	"context"

	"github.com/fwojciec/embedify"
)

var _ embedify.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of embedify.Fetcher.
type Fetcher struct {
	FetchDocumentFn func(ctx context.Context, uri string) (*embedify.FetchResult, error)
	CloseFn         func() error
}

func (f *Fetcher) FetchDocument(ctx context.Context, uri string) (*embedify.FetchResult, error) {
	return f.FetchDocumentFn(ctx, uri)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
