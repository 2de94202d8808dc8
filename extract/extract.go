// Package extract implements the Open Graph extraction pipeline: fetch,
// scan, fallback synthesis of missing mandatory attributes, image candidate
// resolution and description back-fill.
package extract

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/embedify"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeConcurrency is the number of image probes run in parallel.
const DefaultProbeConcurrency = 4

// DefaultProbeTimeout caps the wait for a single image probe.
const DefaultProbeTimeout = 5 * time.Second

// Ensure Extractor implements embedify.RecordService at compile time.
var _ embedify.RecordService = (*Extractor)(nil)

// Extractor produces Open Graph records from web pages.
// Concurrent calls are independent and share no mutable state.
type Extractor struct {
	Fetcher embedify.Fetcher
	Scanner embedify.Scanner
	Prober  embedify.ImageProber

	// RateLimiter, if set, throttles image probes per host.
	RateLimiter embedify.DomainLimiter

	// Policy filters probed images. The zero value means
	// embedify.DefaultImagePolicy.
	Policy embedify.ImagePolicy

	MaxProbes        int
	ProbeConcurrency int
	ProbeTimeout     time.Duration
}

// Fetch retrieves uri and returns its best-effort record.
func (e *Extractor) Fetch(ctx context.Context, uri string) (*embedify.Record, error) {
	if err := embedify.ContextError(ctx); err != nil {
		return nil, err
	}

	result, err := e.Fetcher.FetchDocument(ctx, uri)
	if err != nil {
		return nil, err
	}

	return e.Extract(ctx, result)
}

// Extract builds a record from an already fetched document. Given the same
// document and the same probe answers it yields an identical record.
func (e *Extractor) Extract(ctx context.Context, result *embedify.FetchResult) (*embedify.Record, error) {
	doc, err := e.Scanner.Scan(result.Body)
	if err != nil {
		if embedify.ErrorCode(err) == embedify.EINTERNAL {
			err = embedify.WrapError(embedify.EPARSE, err, "failed to parse %s", result.FinalURL)
		}
		return nil, err
	}

	rec := NewRecord(doc.Properties(), result.FinalURL)

	if err := e.EnsureMandatory(ctx, rec, doc, result.FinalURL); err != nil {
		return nil, err
	}

	if !rec.Has(embedify.AttrDescription) {
		if desc, ok := ResolveDescription(doc); ok {
			rec.Description = desc
		}
	}

	if err := embedify.ContextError(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

// EnsureMandatory fills absent mandatory attributes from the document.
// Present attributes are never overwritten. Attributes that cannot be
// derived stay absent. The only error is cancellation.
func (e *Extractor) EnsureMandatory(ctx context.Context, rec *embedify.Record, doc embedify.Document, baseURL string) error {
	if !rec.Has(embedify.AttrTitle) {
		if title, ok := doc.Title(); ok {
			rec.Title = title
		}
	}

	if !rec.Has(embedify.AttrType) {
		rec.Type = embedify.DefaultType
	}

	if !rec.Has(embedify.AttrImage) {
		images, err := e.ResolveImageCandidates(ctx, doc, baseURL)
		if err != nil {
			return err
		}
		if len(images) > 0 {
			rec.Images = images
		}
	}

	return nil
}

// ResolveImageCandidates probes the document's <img> sources and returns
// those passing the image policy, in document order. At most MaxProbes
// distinct absolute URLs are probed. Probe failures drop the candidate.
func (e *Extractor) ResolveImageCandidates(ctx context.Context, doc embedify.Document, baseURL string) ([]embedify.ImageCandidate, error) {
	if e.Prober == nil {
		return nil, nil
	}

	urls := candidateURLs(doc.ImageSources(), baseURL, e.maxProbes())
	if len(urls) == 0 {
		return nil, nil
	}

	policy := e.policy()
	timeout := e.probeTimeout()

	// Results are stored by position so the output keeps document order
	// regardless of completion order.
	results := make([]*embedify.ImageCandidate, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.probeConcurrency())
	for i, u := range urls {
		g.Go(func() error {
			img, ok := e.probe(gctx, u, timeout)
			if ok && policy.Allow(img.Width, img.Height) {
				results[i] = &embedify.ImageCandidate{URL: u, Width: img.Width, Height: img.Height}
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := embedify.ContextError(ctx); err != nil {
		return nil, err
	}

	var images []embedify.ImageCandidate
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images, nil
}

// probe runs a single dimension probe under its own timeout.
// The timeout also covers the rate limiter wait.
func (e *Extractor) probe(ctx context.Context, rawURL string, timeout time.Duration) (*embedify.ImageCandidate, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if e.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, false
		}
		if err := e.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, false
		}
	}

	img, err := e.Prober.ProbeImage(ctx, rawURL)
	if err != nil || img == nil {
		return nil, false
	}
	return img, true
}

func (e *Extractor) maxProbes() int {
	if e.MaxProbes <= 0 {
		return embedify.DefaultMaxProbes
	}
	return e.MaxProbes
}

func (e *Extractor) probeConcurrency() int {
	if e.ProbeConcurrency <= 0 {
		return DefaultProbeConcurrency
	}
	return e.ProbeConcurrency
}

func (e *Extractor) probeTimeout() time.Duration {
	if e.ProbeTimeout <= 0 {
		return DefaultProbeTimeout
	}
	return e.ProbeTimeout
}

func (e *Extractor) policy() embedify.ImagePolicy {
	if e.Policy == (embedify.ImagePolicy{}) {
		return embedify.DefaultImagePolicy()
	}
	return e.Policy
}

// ResolveDescription returns the meta description, falling back to the
// text of the first paragraph. Reports false when neither exists.
func ResolveDescription(doc embedify.Document) (string, bool) {
	if desc, ok := doc.MetaDescription(); ok {
		return desc, true
	}
	return doc.FirstParagraph()
}

// candidateURLs resolves srcs against baseURL and returns up to limit
// distinct http(s) URLs in encounter order.
func candidateURLs(srcs []string, baseURL string, limit int) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, src := range srcs {
		if len(urls) >= limit {
			break
		}
		resolved, ok := resolveURL(base, src)
		if !ok {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		urls = append(urls, resolved)
	}
	return urls
}

// resolveURL resolves ref against base. Only http and https results are
// returned; data:, javascript: and similar sources cannot be probed.
func resolveURL(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// NewRecord builds a record from scanned og: properties. The record's url
// falls back to finalURL when the page does not declare og:url. A declared
// og:image becomes the single image candidate, with dimensions taken from
// og:image:width and og:image:height when present. A declared image that
// does not resolve to an http(s) URL is dropped.
func NewRecord(props map[string]string, finalURL string) *embedify.Record {
	rec := &embedify.Record{
		Title:       props[embedify.AttrTitle],
		Type:        props[embedify.AttrType],
		URL:         props[embedify.AttrURL],
		Description: props[embedify.AttrDescription],
	}
	if rec.URL == "" {
		rec.URL = finalURL
	}

	if src := declaredImage(props); src != "" {
		img := embedify.ImageCandidate{
			URL:    src,
			Width:  positiveInt(props["image:width"]),
			Height: positiveInt(props["image:height"]),
		}
		if base, err := url.Parse(finalURL); err == nil {
			if resolved, ok := resolveURL(base, src); ok {
				img.URL = resolved
				rec.Images = []embedify.ImageCandidate{img}
			}
		}
	}

	for k, v := range props {
		switch k {
		case embedify.AttrTitle, embedify.AttrType, embedify.AttrURL, embedify.AttrDescription, embedify.AttrImage:
			continue
		}
		if rec.Properties == nil {
			rec.Properties = make(map[string]string)
		}
		rec.Properties[k] = v
	}

	return rec
}

// declaredImage returns og:image, or its og:image:url alias.
func declaredImage(props map[string]string) string {
	if src := strings.TrimSpace(props[embedify.AttrImage]); src != "" {
		return src
	}
	return strings.TrimSpace(props["image:url"])
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
