package embedify

import "context"

// DefaultMaxRedirects bounds the redirect chain followed by fetchers.
const DefaultMaxRedirects = 10

// FetchResult is a fetched document after redirect resolution.
type FetchResult struct {
	// FinalURL is the URL the document was served from after redirects.
	FinalURL string

	// Status is the HTTP status of the final response.
	Status int

	// Body is the document decoded to UTF-8.
	Body string
}

// Fetcher retrieves documents from URLs.
type Fetcher interface {
	// FetchDocument issues a GET for uri, following redirects up to a
	// bound. Returns EFETCH on transport failure, EREDIRECT when the
	// bound is exceeded and ECANCELED when ctx is done.
	FetchDocument(ctx context.Context, uri string) (*FetchResult, error)

	// Close releases fetcher resources.
	Close() error
}
