package goquery_test

import (
	"testing"

	"github.com/fwojciec/embedify"
	"github.com/fwojciec/embedify/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Scanner implements embedify.Scanner at compile time.
var _ embedify.Scanner = (*goquery.Scanner)(nil)

func scan(t *testing.T, html string) embedify.Document {
	t.Helper()

	doc, err := goquery.NewScanner().Scan(html)
	require.NoError(t, err)
	return doc
}

func TestScanner_Properties(t *testing.T) {
	t.Parallel()

	t.Run("extracts og tags with normalized keys", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head>
<meta property="og:title" content="The Rock">
<meta property="og:type" content="movie">
<meta property="og:site-name" content="IMDb">
<meta property="og:image:width" content="400">
</head><body></body></html>`)

		assert.Equal(t, map[string]string{
			"title":       "The Rock",
			"type":        "movie",
			"site_name":   "IMDb",
			"image:width": "400",
		}, doc.Properties())
	})

	t.Run("matches property prefix case-insensitively", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head><meta property="OG:Title" content="Shouting"></head></html>`)

		assert.Equal(t, map[string]string{"title": "Shouting"}, doc.Properties())
	})

	t.Run("last duplicate wins", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head>
<meta property="og:title" content="First">
<meta property="og:title" content="Second">
</head></html>`)

		assert.Equal(t, "Second", doc.Properties()["title"])
	})

	t.Run("ignores non-og and name-only meta tags", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head>
<meta name="og:title" content="Wrong attribute">
<meta property="twitter:title" content="Twitter">
<meta property="og:" content="No name">
<meta charset="utf-8">
</head></html>`)

		assert.Empty(t, doc.Properties())
	})

	t.Run("missing content yields empty value", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head><meta property="og:description"></head></html>`)

		v, ok := doc.Properties()["description"]
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head><meta property="og:title" content="Keep"></head></html>`)
		doc.Properties()["title"] = "Changed"

		assert.Equal(t, "Keep", doc.Properties()["title"])
	})
}

func TestDocument_Title(t *testing.T) {
	t.Parallel()

	t.Run("returns trimmed text of first title", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, "<html><head><title>\n  Hello Page  \n</title><title>Second</title></head></html>")

		title, ok := doc.Title()
		assert.True(t, ok)
		assert.Equal(t, "Hello Page", title)
	})

	t.Run("absent when no title element", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, "<html><head></head><body><p>x</p></body></html>")

		_, ok := doc.Title()
		assert.False(t, ok)
	})

	t.Run("absent when title is blank", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, "<html><head><title>   </title></head></html>")

		_, ok := doc.Title()
		assert.False(t, ok)
	})
}

func TestDocument_MetaDescription(t *testing.T) {
	t.Parallel()

	t.Run("matches name case-insensitively", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head>
<meta name="keywords" content="a,b">
<meta name="DESCRIPTION" content="A page about things">
<meta name="description" content="Later one">
</head></html>`)

		desc, ok := doc.MetaDescription()
		assert.True(t, ok)
		assert.Equal(t, "A page about things", desc)
	})

	t.Run("does not match partial names", func(t *testing.T) {
		t.Parallel()

		doc := scan(t, `<html><head><meta name="og:description" content="nope"></head></html>`)

		_, ok := doc.MetaDescription()
		assert.False(t, ok)
	})
}

func TestDocument_FirstParagraph(t *testing.T) {
	t.Parallel()

	doc := scan(t, `<html><body><div><p> Hello <b>world</b> </p><p>Second</p></div></body></html>`)

	p, ok := doc.FirstParagraph()
	assert.True(t, ok)
	assert.Equal(t, "Hello world", p)

	empty := scan(t, `<html><body><div>No paragraphs</div></body></html>`)
	_, ok = empty.FirstParagraph()
	assert.False(t, ok)
}

func TestDocument_ImageSources(t *testing.T) {
	t.Parallel()

	doc := scan(t, `<html><body>
<img src="/a.png">
<img alt="no source">
<img src="">
<img src=" https://cdn.example.com/b.jpg ">
<img src="/a.png">
</body></html>`)

	assert.Equal(t, []string{"/a.png", "https://cdn.example.com/b.jpg", "/a.png"}, doc.ImageSources())
}
