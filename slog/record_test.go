package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/embedify"
	"github.com/fwojciec/embedify/mock"
	embedifyslog "github.com/fwojciec/embedify/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingRecordService_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs validity and image count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.RecordService{
			FetchFn: func(ctx context.Context, uri string) (*embedify.Record, error) {
				return &embedify.Record{
					Title:  "T",
					Type:   "website",
					URL:    uri,
					Images: []embedify.ImageCandidate{{URL: "https://example.com/a.png"}},
				}, nil
			},
		}

		svc := embedifyslog.NewLoggingRecordService(inner, logger)
		rec, err := svc.Fetch(context.Background(), "https://example.com")

		require.NoError(t, err)
		assert.True(t, rec.Valid())
		output := buf.String()
		assert.Contains(t, output, "msg=extract")
		assert.Contains(t, output, "valid=true")
		assert.Contains(t, output, "images=1")
		assert.NotContains(t, output, "missing=")
	})

	t.Run("logs missing attributes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.RecordService{
			FetchFn: func(ctx context.Context, uri string) (*embedify.Record, error) {
				return &embedify.Record{Type: "website", URL: uri}, nil
			},
		}

		svc := embedifyslog.NewLoggingRecordService(inner, logger)
		_, err := svc.Fetch(context.Background(), "https://example.com")

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "valid=false")
		assert.Contains(t, output, "missing=\"[title image]\"")
	})

	t.Run("logs error code on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.RecordService{
			FetchFn: func(ctx context.Context, uri string) (*embedify.Record, error) {
				return nil, embedify.Errorf(embedify.EREDIRECT, "too many redirects")
			},
		}

		svc := embedifyslog.NewLoggingRecordService(inner, logger)
		_, err := svc.Fetch(context.Background(), "https://example.com")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "too many redirects")
	})
}
