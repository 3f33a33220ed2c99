package render

import (
	"fmt"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// BodyFormat names the format an article body is submitted in
type BodyFormat string

const (
	FormatMarkdown BodyFormat = "markdown"
	FormatHTML     BodyFormat = "html"
	FormatText     BodyFormat = "text"
)

// Converter converts a submitted body to markdown
type Converter interface {
	Convert(input string) (string, error)
	Format() BodyFormat
}

// Importer routes bodies to the converter registered for their format.
//
// Thread-safe for concurrent access.
type Importer struct {
	mu         sync.RWMutex
	converters map[BodyFormat]Converter
}

// NewImporter creates an importer with markdown, text and HTML converters registered
func NewImporter() *Importer {
	im := &Importer{converters: make(map[BodyFormat]Converter)}
	im.Register(passthroughConverter{format: FormatMarkdown})
	im.Register(passthroughConverter{format: FormatText})
	im.Register(newHTMLConverter())
	return im
}

// Register adds or replaces the converter for its format
func (im *Importer) Register(c Converter) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.converters[c.Format()] = c
}

// Supports reports whether a converter is registered for format
func (im *Importer) Supports(format BodyFormat) bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	_, ok := im.converters[format]
	return ok
}

// ToMarkdown converts body from format to markdown. An empty format means markdown.
func (im *Importer) ToMarkdown(format BodyFormat, body string) (string, error) {
	if format == "" {
		format = FormatMarkdown
	}

	im.mu.RLock()
	c, ok := im.converters[BodyFormat(strings.ToLower(string(format)))]
	im.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unsupported body format: %s", format)
	}

	return c.Convert(body)
}

// passthroughConverter returns its input; plain text is valid markdown
type passthroughConverter struct {
	format BodyFormat
}

func (c passthroughConverter) Convert(input string) (string, error) { return input, nil }
func (c passthroughConverter) Format() BodyFormat                  { return c.format }

// htmlConverter sanitizes HTML, then converts it to markdown
type htmlConverter struct {
	sanitizer *HTMLSanitizer
	converter *md.Converter
}

func newHTMLConverter() *htmlConverter {
	return &htmlConverter{
		sanitizer: NewHTMLSanitizer(),
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(input string) (string, error) {
	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(input))
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

func (c *htmlConverter) Format() BodyFormat { return FormatHTML }
