package extract

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/embedify"
	"golang.org/x/time/rate"
)

var _ embedify.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces image dimension requests per image host, so a page
// whose images all live on one CDN does not fire a burst of range requests
// at it. Hosts are keyed as they appear in the image URL, port included,
// and compared case-insensitively.
type DomainLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewDomainLimiter returns a DomainLimiter allowing rps requests per second
// to each image host, with the given burst. A burst below 1 is raised to 1.
// A non-positive rps disables limiting.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limit: limit,
		burst: max(burst, 1),
		hosts: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until host's bucket has a token. When ctx is done, or its
// deadline falls before the next token, Wait returns ECANCELED without
// consuming one.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	if err := d.bucket(host).Wait(ctx); err != nil {
		if cerr := embedify.ContextError(ctx); cerr != nil {
			return cerr
		}
		return embedify.WrapError(embedify.ECANCELED, err, "waiting to contact %s", host)
	}
	return nil
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	host = strings.ToLower(host)

	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.hosts[host]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.hosts[host] = l
	}
	return l
}
