// Package http provides net/http implementations of the embedify fetching
// interfaces and the HTTP server exposing records as JSON.
package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/embedify"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for a single HTTP request.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a document body is read.
const DefaultMaxBodyBytes = 5 << 20

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "embedify/1.0 (+https://github.com/fwojciec/embedify)"

// Ensure Fetcher implements embedify.Fetcher at compile time.
var _ embedify.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents over HTTP. Redirects are followed by the
// Fetcher itself rather than by the client so that the hop count is bounded
// and the final URL is known.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxRedirects int
	maxBodyBytes int64
	userAgent    string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for each HTTP request in the redirect chain.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxRedirects sets how many redirects are followed before the fetch
// fails with EREDIRECT. Defaults to embedify.DefaultMaxRedirects (10).
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithMaxBodyBytes caps the number of body bytes read from the final response.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxRedirects: embedify.DefaultMaxRedirects,
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return f
}

// FetchDocument retrieves uri, following up to maxRedirects redirects.
func (f *Fetcher) FetchDocument(ctx context.Context, uri string) (*embedify.FetchResult, error) {
	current, err := url.Parse(uri)
	if err != nil {
		return nil, embedify.WrapError(embedify.EINVALID, err, "invalid URL %q", uri)
	}
	if !current.IsAbs() {
		return nil, embedify.Errorf(embedify.EINVALID, "URL %q is not absolute", uri)
	}

	for redirects := 0; ; {
		resp, err := f.get(ctx, current.String())
		if err != nil {
			return nil, err
		}

		location := resp.Header.Get("Location")
		if !isRedirect(resp.StatusCode) || location == "" {
			return f.readResult(ctx, current, resp)
		}
		resp.Body.Close()

		if redirects >= f.maxRedirects {
			return nil, embedify.Errorf(embedify.EREDIRECT, "stopped after %d redirects at %s", redirects, current)
		}
		redirects++

		next, err := current.Parse(location)
		if err != nil {
			return nil, embedify.WrapError(embedify.EFETCH, err, "invalid redirect location %q from %s", location, current)
		}
		current = next
	}
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func (f *Fetcher) get(ctx context.Context, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, embedify.WrapError(embedify.EINVALID, err, "invalid request for %s", uri)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if cerr := embedify.ContextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, embedify.WrapError(embedify.EFETCH, err, "GET %s", uri)
	}
	return resp, nil
}

// readResult reads and decodes the body of the final response.
func (f *Fetcher) readResult(ctx context.Context, final *url.URL, resp *http.Response) (*embedify.FetchResult, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		if cerr := embedify.ContextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, embedify.WrapError(embedify.EFETCH, err, "reading body of %s", final)
	}

	return &embedify.FetchResult{
		FinalURL: final.String(),
		Status:   resp.StatusCode,
		Body:     decodeBody(body, resp.Header.Get("Content-Type")),
	}, nil
}

// decodeBody converts body to UTF-8 using the declared or sniffed charset.
// Bodies that cannot be decoded are returned unchanged.
func decodeBody(body []byte, contentType string) string {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// isRedirect reports whether status is in the 301-307 redirect range.
func isRedirect(status int) bool {
	return status >= http.StatusMovedPermanently && status <= http.StatusTemporaryRedirect
}
