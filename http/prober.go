package http

import (
	"bufio"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/embedify"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultProbeTimeout bounds a single image dimension probe.
const DefaultProbeTimeout = 5 * time.Second

// DefaultMaxHeaderBytes is how much of an image is read while looking for
// its dimensions. JPEG headers can sit behind large EXIF blocks.
const DefaultMaxHeaderBytes = 256 << 10

// Ensure ImageProber implements embedify.ImageProber at compile time.
var _ embedify.ImageProber = (*ImageProber)(nil)

// ImageProber reads image dimensions by decoding only the image header.
// It asks the server for a byte range and stops reading as soon as the
// header is decoded.
type ImageProber struct {
	client         *http.Client
	timeout        time.Duration
	maxHeaderBytes int64
	userAgent      string
}

// ProberOption configures an ImageProber.
type ProberOption func(*ImageProber)

// WithProbeTimeout sets the timeout for a single probe.
// Defaults to DefaultProbeTimeout (5s) if not specified.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *ImageProber) {
		p.timeout = d
	}
}

// WithMaxHeaderBytes caps how many bytes are read per image.
func WithMaxHeaderBytes(n int64) ProberOption {
	return func(p *ImageProber) {
		p.maxHeaderBytes = n
	}
}

// WithProbeUserAgent sets the User-Agent header used for probes.
func WithProbeUserAgent(ua string) ProberOption {
	return func(p *ImageProber) {
		p.userAgent = ua
	}
}

// NewImageProber creates a new ImageProber.
func NewImageProber(opts ...ProberOption) *ImageProber {
	p := &ImageProber{
		timeout:        DefaultProbeTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
		userAgent:      DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = &http.Client{
		Timeout: p.timeout,
	}

	return p
}

// ProbeImage decodes the dimensions of the image at url.
func (p *ImageProber) ProbeImage(ctx context.Context, url string) (*embedify.ImageCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, embedify.WrapError(embedify.EPROBE, err, "invalid image URL %q", url)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/*")
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", p.maxHeaderBytes-1))

	resp, err := p.client.Do(req)
	if err != nil {
		if cerr := embedify.ContextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, embedify.WrapError(embedify.EPROBE, err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, embedify.Errorf(embedify.EPROBE, "HTTP %d for %s", resp.StatusCode, url)
	}

	// Servers that ignore Range send the whole image; the limit keeps the
	// read bounded either way.
	r := bufio.NewReader(io.LimitReader(resp.Body, p.maxHeaderBytes))
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		if cerr := embedify.ContextError(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, embedify.WrapError(embedify.EPROBE, err, "decoding image header of %s", url)
	}

	return &embedify.ImageCandidate{
		URL:    url,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
