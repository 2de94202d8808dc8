package mock

import "github.com/fwojciec/embedify"

var (
	_ embedify.Scanner  = (*Scanner)(nil)
	_ embedify.Document = (*Document)(nil)
)

// Scanner is a mock implementation of embedify.Scanner.
type Scanner struct {
	ScanFn func(body string) (embedify.Document, error)
}

func (s *Scanner) Scan(body string) (embedify.Document, error) {
	return s.ScanFn(body)
}

// Document is a mock implementation of embedify.Document.
type Document struct {
	PropertiesFn      func() map[string]string
	TitleFn           func() (string, bool)
	MetaDescriptionFn func() (string, bool)
	FirstParagraphFn  func() (string, bool)
	ImageSourcesFn    func() []string
}

func (d *Document) Properties() map[string]string {
	return d.PropertiesFn()
}

func (d *Document) Title() (string, bool) {
	return d.TitleFn()
}

func (d *Document) MetaDescription() (string, bool) {
	return d.MetaDescriptionFn()
}

func (d *Document) FirstParagraph() (string, bool) {
	return d.FirstParagraphFn()
}

func (d *Document) ImageSources() []string {
	return d.ImageSourcesFn()
}
