package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/embedify"
	"github.com/fwojciec/embedify/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "simple path",
			url:  "https://example.com/blog/posts/hello",
			want: "example.com/blog/posts/hello.json",
		},
		{
			name: "trailing slash becomes index",
			url:  "https://example.com/blog/",
			want: "example.com/blog/index.json",
		},
		{
			name: "root path becomes index",
			url:  "https://example.com/",
			want: "example.com/index.json",
		},
		{
			name: "root without trailing slash",
			url:  "https://example.com",
			want: "example.com/index.json",
		},
		{
			name: "ignores query string",
			url:  "https://example.com/watch?v=abc",
			want: "example.com/watch.json",
		},
		{
			name: "ignores fragment",
			url:  "https://example.com/post#comments",
			want: "example.com/post.json",
		},
		{
			name: "keeps port in host directory",
			url:  "http://localhost:8080/page",
			want: "localhost:8080/page.json",
		},
		{
			name: "dot segments stay inside host directory",
			url:  "https://example.com/../../etc/passwd",
			want: "example.com/etc/passwd.json",
		},
		{
			name:    "relative URL",
			url:     "/just/a/path",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, embedify.EINVALID, embedify.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestWriter_WriteRecord(t *testing.T) {
	t.Parallel()

	t.Run("writes record JSON under host directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewWriter(dir)
		rec := &embedify.Record{
			Title:  "Hello",
			Type:   "website",
			URL:    "https://example.com/blog/hello",
			Images: []embedify.ImageCandidate{{URL: "https://example.com/a.png", Width: 200, Height: 100}},
		}

		err := w.WriteRecord(context.Background(), rec)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "blog", "hello.json"))
		require.NoError(t, err)

		var got embedify.Record
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "Hello", got.Title)
		assert.Equal(t, rec.Images, got.Images)
	})

	t.Run("overwrites an existing record", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewWriter(dir)

		require.NoError(t, w.WriteRecord(context.Background(), &embedify.Record{Title: "Old", URL: "https://example.com/"}))
		require.NoError(t, w.WriteRecord(context.Background(), &embedify.Record{Title: "New", URL: "https://example.com/"}))

		data, err := os.ReadFile(filepath.Join(dir, "example.com", "index.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"New"`)
		assert.NotContains(t, string(data), `"Old"`)

		entries, err := os.ReadDir(filepath.Join(dir, "example.com"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects records without a usable url", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())

		err := w.WriteRecord(context.Background(), &embedify.Record{Title: "x"})

		require.Error(t, err)
		assert.Equal(t, embedify.EINVALID, embedify.ErrorCode(err))
	})

	t.Run("returns ECANCELED for a done context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fs.NewWriter(t.TempDir()).WriteRecord(ctx, &embedify.Record{URL: "https://example.com/"})

		assert.Equal(t, embedify.ECANCELED, embedify.ErrorCode(err))
	})
}
