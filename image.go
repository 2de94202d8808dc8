package embedify

import "context"

// DefaultMaxProbes caps the number of image sources probed per page.
const DefaultMaxProbes = 10

// ImageCandidate is an image eligible for use as a preview thumbnail.
// A zero Width or Height means the dimension is unknown.
type ImageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ImagePolicy is the quality gate applied to probed image candidates.
type ImagePolicy struct {
	MinWidth  int
	MinHeight int

	// MaxAspectRatio bounds how many times larger one side may be than
	// the other. Zero disables the check.
	MaxAspectRatio int
}

// DefaultImagePolicy accepts images of at least 50x50 whose sides differ
// by no more than a factor of three.
func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		MinWidth:       50,
		MinHeight:      50,
		MaxAspectRatio: 3,
	}
}

// Allow reports whether an image with the given dimensions passes the policy.
func (p ImagePolicy) Allow(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width < p.MinWidth || height < p.MinHeight {
		return false
	}
	if p.MaxAspectRatio <= 0 {
		return true
	}
	return p.MaxAspectRatio*min(width, height) >= max(width, height)
}

// ImageProber reads the pixel dimensions of remote images.
type ImageProber interface {
	// ProbeImage fetches just enough of the image at url to decode its
	// header. Returns EPROBE if the image is unreachable or undecodable.
	ProbeImage(ctx context.Context, url string) (*ImageCandidate, error)
}

// DomainLimiter paces requests made to a single host.
type DomainLimiter interface {
	// Wait blocks until a request to host is allowed. host is the URL host,
	// port included. Returns ECANCELED if ctx ends first.
	Wait(ctx context.Context, host string) error
}
