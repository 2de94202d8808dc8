package embedify

// Document is a parsed HTML page that later pipeline stages query.
type Document interface {
	// Properties returns the og: attributes keyed by normalized name:
	// the "og:" prefix stripped, lower-cased, with "-" replaced by "_".
	// Later duplicates overwrite earlier ones.
	Properties() map[string]string

	// Title returns the trimmed text of the first <title> element.
	Title() (string, bool)

	// MetaDescription returns the content of the first <meta> whose name
	// is "description", compared case-insensitively.
	MetaDescription() (string, bool)

	// FirstParagraph returns the trimmed text of the first <p> element.
	FirstParagraph() (string, bool)

	// ImageSources returns the raw src attribute of every <img> element,
	// in document order. Empty sources are skipped.
	ImageSources() []string
}

// Scanner parses HTML bodies into Documents.
type Scanner interface {
	// Scan parses body. Returns EPARSE if the body cannot be parsed.
	Scan(body string) (Document, error)
}
