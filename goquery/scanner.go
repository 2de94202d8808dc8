package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/embedify"
)

// Compile-time interface verification.
var (
	_ embedify.Scanner  = (*Scanner)(nil)
	_ embedify.Document = (*Document)(nil)
)

var (
	ogPropertyRe      = regexp.MustCompile(`(?i)^og:(.+)$`)
	descriptionNameRe = regexp.MustCompile(`(?i)^description$`)
)

// Scanner parses HTML into queryable documents.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan parses body and collects its og: meta tags in a single forward pass.
func (s *Scanner) Scan(body string) (embedify.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, embedify.WrapError(embedify.EPARSE, err, "failed to parse HTML")
	}

	props := make(map[string]string)
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		property, ok := sel.Attr("property")
		if !ok {
			return
		}
		m := ogPropertyRe.FindStringSubmatch(strings.TrimSpace(property))
		if m == nil {
			return
		}
		props[normalizeKey(m[1])] = sel.AttrOr("content", "")
	})

	return &Document{doc: doc, props: props}, nil
}

// normalizeKey lower-cases an og: property name and replaces hyphens
// with underscores.
func normalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// Document is a parsed HTML page backed by a goquery document.
type Document struct {
	doc   *goquery.Document
	props map[string]string
}

// Properties returns a copy of the scanned og: attributes.
func (d *Document) Properties() map[string]string {
	props := make(map[string]string, len(d.props))
	for k, v := range d.props {
		props[k] = v
	}
	return props
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() (string, bool) {
	return firstText(d.doc.Find("title"))
}

// MetaDescription returns the content of the first description meta tag.
func (d *Document) MetaDescription() (string, bool) {
	var (
		content string
		found   bool
	)
	d.doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name, ok := sel.Attr("name")
		if !ok || !descriptionNameRe.MatchString(strings.TrimSpace(name)) {
			return true
		}
		content = sel.AttrOr("content", "")
		found = true
		return false
	})
	return content, found && content != ""
}

// FirstParagraph returns the trimmed text of the first <p> element.
func (d *Document) FirstParagraph() (string, bool) {
	return firstText(d.doc.Find("p"))
}

// ImageSources returns the src of every <img> in document order.
func (d *Document) ImageSources() []string {
	var srcs []string
	d.doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src := strings.TrimSpace(sel.AttrOr("src", ""))
		if src == "" {
			return
		}
		srcs = append(srcs, src)
	})
	return srcs
}

// firstText returns the whitespace-trimmed text of the first element in sel.
// An element with no text counts as absent.
func firstText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.First().Text())
	return text, text != ""
}
