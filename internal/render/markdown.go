package render

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// Inline HTML in a message body is passed through as written.
		gmhtml.WithUnsafe(),
	),
)

// Markdown renders source as HTML. Empty input yields empty output. If the
// converter fails, the HTML-escaped source is returned instead.
func Markdown(source string) string {
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source)
	}
	return buf.String()
}
