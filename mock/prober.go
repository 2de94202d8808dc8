package mock

import (
	"context"

	"github.com/fwojciec/embedify"
)

var _ embedify.ImageProber = (*ImageProber)(nil)

// ImageProber is a mock implementation of embedify.ImageProber.
type ImageProber struct {
	ProbeImageFn func(ctx context.Context, url string) (*embedify.ImageCandidate, error)
}

func (p *ImageProber) ProbeImage(ctx context.Context, url string) (*embedify.ImageCandidate, error) {
	return p.ProbeImageFn(ctx, url)
}

var _ embedify.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of embedify.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
