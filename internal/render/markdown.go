// Package render turns article bodies into reader HTML and imports legacy
// bodies into the markdown storage format.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown article bodies to sanitized HTML.
//
// Thread-safe for concurrent use.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *HTMLSanitizer
}

// NewRenderer creates a renderer with tables, strikethrough and heading ids enabled.
// Raw HTML in bodies passes through goldmark and is then cleaned by the sanitizer.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe(), html.WithHardWraps()),
	)
	return &Renderer{md: md, sanitizer: NewHTMLSanitizer()}
}

// ToHTML renders a markdown body. An empty body renders as an empty string.
func (r *Renderer) ToHTML(body string) (string, error) {
	if body == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return r.sanitizer.Sanitize(buf.String()), nil
}
