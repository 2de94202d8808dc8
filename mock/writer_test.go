package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/embedify"
	"github.com/fwojciec/embedify/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where RecordWriter is expected
	var _ embedify.RecordWriter = &mock.RecordWriter{}
}

func TestRecordWriter_WriteRecord(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteRecordFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *embedify.Record
		w := &mock.RecordWriter{
			WriteRecordFn: func(_ context.Context, rec *embedify.Record) error {
				calledWith = rec
				return nil
			},
		}

		rec := &embedify.Record{Title: "Test", URL: "https://example.com/"}

		err := w.WriteRecord(context.Background(), rec)

		require.NoError(t, err)
		assert.Equal(t, rec, calledWith)
	})

	t.Run("returns error from WriteRecordFn", func(t *testing.T) {
		t.Parallel()

		w := &mock.RecordWriter{
			WriteRecordFn: func(_ context.Context, _ *embedify.Record) error {
				return errors.New("disk full")
			},
		}

		err := w.WriteRecord(context.Background(), &embedify.Record{})

		require.EqualError(t, err, "disk full")
	})
}
