// Package fs stores extracted records as JSON files.
package fs

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/embedify"
)

// URLToPath converts a page URL to a relative file path rooted at its host.
// Example: https://example.com/blog/post → example.com/blog/post.json
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", embedify.WrapError(embedify.EINVALID, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return "", embedify.Errorf(embedify.EINVALID, "URL %q has no host", rawURL)
	}

	p := u.Path

	// Root or trailing slash → index.json in that directory
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}

	// Clean keeps ".." segments from escaping the host directory.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		p = "index"
	}

	return filepath.Join(u.Host, filepath.FromSlash(p)) + ".json", nil
}

// Ensure Writer implements embedify.RecordWriter at compile time.
var _ embedify.RecordWriter = (*Writer)(nil)

// Writer writes records as JSON files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteRecord writes rec to the path derived from its url. The file is
// written to a temporary name and renamed into place, so readers never
// see a partial record.
func (w *Writer) WriteRecord(ctx context.Context, rec *embedify.Record) error {
	if err := embedify.ContextError(ctx); err != nil {
		return err
	}

	relPath, err := URLToPath(rec.URL)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return embedify.WrapError(embedify.EINTERNAL, err, "encoding record for %s", rec.URL)
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".record-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fullPath)
}
