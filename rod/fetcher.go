// Package rod implements embedify.Fetcher on a headless Chrome browser for
// pages that only declare their Open Graph tags after client-side rendering.
package rod

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/embedify"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds navigation and rendering of a single page.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxPages is the number of pages rendered before the browser is
// relaunched. Chrome's memory baseline grows with every page it renders.
const DefaultMaxPages = 75

// Ensure Fetcher implements embedify.Fetcher at compile time.
var _ embedify.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	timeout      time.Duration
	maxPages     int64
	maxRedirects int

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    atomic.Int64
	closed   atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-page navigation timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets how many pages are rendered before the browser is
// relaunched.
func WithMaxPages(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// WithMaxRedirects sets how many document redirects a navigation may follow
// before it fails with EREDIRECT. Defaults to embedify.DefaultMaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxPages:     DefaultMaxPages,
		maxRedirects: embedify.DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(f)
	}

	browser, l, err := launch()
	if err != nil {
		return nil, err
	}
	f.browser, f.launcher = browser, l
	return f, nil
}

// FetchDocument navigates to uri, waits for the page to load and returns the
// rendered HTML. The browser does not expose the document's HTTP status, so
// a page that renders is reported as 200.
func (f *Fetcher) FetchDocument(ctx context.Context, uri string) (*embedify.FetchResult, error) {
	if err := embedify.ContextError(ctx); err != nil {
		return nil, err
	}
	if f.closed.Load() {
		return nil, embedify.Errorf(embedify.EINVALID, "fetcher is closed")
	}

	page, err := f.acquire().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, embedify.WrapError(embedify.EFETCH, err, "opening page for %s", uri)
	}
	defer page.Close()
	defer f.pages.Add(1)

	navCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	page = page.Context(navCtx).Timeout(f.timeout)

	var exceeded atomic.Bool
	redirects := 0
	go page.EachEvent(func(e *proto.NetworkRequestWillBeSent) bool {
		if e.RedirectResponse == nil || e.Type != proto.NetworkResourceTypeDocument || e.FrameID != page.FrameID {
			return false
		}
		redirects++
		if redirects > f.maxRedirects {
			exceeded.Store(true)
			cancel()
			return true
		}
		return false
	})()

	fail := func(err error) error {
		return fetchError(ctx, err, uri, exceeded.Load(), f.maxRedirects)
	}

	if err := page.Navigate(uri); err != nil {
		return nil, fail(err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fail(err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fail(err)
	}
	if exceeded.Load() {
		return nil, fail(nil)
	}

	finalURL := uri
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &embedify.FetchResult{FinalURL: finalURL, Status: 200, Body: html}, nil
}

// fetchError classifies a navigation failure. Chrome gives up on its own
// after 20 redirects and reports net::ERR_TOO_MANY_REDIRECTS.
func fetchError(ctx context.Context, err error, uri string, exceeded bool, maxRedirects int) error {
	if exceeded {
		return embedify.Errorf(embedify.EREDIRECT, "stopped after %d redirects at %s", maxRedirects, uri)
	}
	if cerr := embedify.ContextError(ctx); cerr != nil {
		return cerr
	}
	if err != nil && strings.Contains(err.Error(), "ERR_TOO_MANY_REDIRECTS") {
		return embedify.WrapError(embedify.EREDIRECT, err, "too many redirects at %s", uri)
	}
	return embedify.WrapError(embedify.EFETCH, err, "rendering %s", uri)
}

// acquire returns the current browser, relaunching it first once it has
// rendered maxPages pages. A failed relaunch keeps the old browser.
func (f *Fetcher) acquire() *rod.Browser {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pages.Load() < f.maxPages {
		return f.browser
	}

	browser, l, err := launch()
	if err != nil {
		return f.browser
	}
	_ = f.browser.Close()
	f.launcher.Kill()
	f.browser, f.launcher = browser, l
	f.pages.Store(0)
	return f.browser
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.browser.Close()
	f.launcher.Kill()
	return err
}

// LauncherPID returns the process ID of the running browser launcher.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launcher.PID()
}

func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, nil, embedify.WrapError(embedify.EINTERNAL, err, "launching browser")
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, embedify.WrapError(embedify.EINTERNAL, err, "connecting to browser")
	}
	return browser, l, nil
}
