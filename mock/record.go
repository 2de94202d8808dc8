package mock

import (
	"context"

	"github.com/fwojciec/embedify"
)

var _ embedify.RecordService = (*RecordService)(nil)

// RecordService is a mock implementation of embedify.RecordService.
type RecordService struct {
	FetchFn func(ctx context.Context, uri string) (*embedify.Record, error)
}

func (s *RecordService) Fetch(ctx context.Context, uri string) (*embedify.Record, error) {
	return s.FetchFn(ctx, uri)
}

var _ embedify.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of embedify.RecordWriter.
type RecordWriter struct {
	WriteRecordFn func(ctx context.Context, rec *embedify.Record) error
}

func (w *RecordWriter) WriteRecord(ctx context.Context, rec *embedify.Record) error {
	return w.WriteRecordFn(ctx, rec)
}
