package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/embedify"
)

// Ensure LoggingProber implements embedify.ImageProber.
var _ embedify.ImageProber = (*LoggingProber)(nil)

// LoggingProber wraps an ImageProber with debug logging. A page can trigger
// several probes, so entries are logged at debug level.
type LoggingProber struct {
	next   embedify.ImageProber
	logger *slog.Logger
}

// NewLoggingProber creates a new LoggingProber.
func NewLoggingProber(next embedify.ImageProber, logger *slog.Logger) *LoggingProber {
	return &LoggingProber{next: next, logger: logger}
}

// ProbeImage delegates to the wrapped prober and logs the probed size.
func (p *LoggingProber) ProbeImage(ctx context.Context, url string) (img *embedify.ImageCandidate, err error) {
	defer func(begin time.Time) {
		var width, height int
		if img != nil {
			width, height = img.Width, img.Height
		}
		p.logger.Debug("probe image",
			"url", url,
			"width", width,
			"height", height,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.ProbeImage(ctx, url)
}
