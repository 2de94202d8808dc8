package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/embedify"
)

// Ensure LoggingRecordService implements embedify.RecordService.
var _ embedify.RecordService = (*LoggingRecordService)(nil)

// LoggingRecordService wraps a RecordService with logging.
type LoggingRecordService struct {
	next   embedify.RecordService
	logger *slog.Logger
}

// NewLoggingRecordService creates a new LoggingRecordService.
func NewLoggingRecordService(next embedify.RecordService, logger *slog.Logger) *LoggingRecordService {
	return &LoggingRecordService{next: next, logger: logger}
}

// Fetch delegates to the wrapped service and logs the extraction outcome.
func (s *LoggingRecordService) Fetch(ctx context.Context, uri string) (rec *embedify.Record, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", uri}
		if rec != nil {
			attrs = append(attrs,
				"valid", rec.Valid(),
				"images", len(rec.Images),
			)
			if missing := rec.Missing(); len(missing) > 0 {
				attrs = append(attrs, "missing", missing)
			}
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		s.logger.Info("extract", attrs...)
	}(time.Now())
	return s.next.Fetch(ctx, uri)
}
