// Package markdown renders run reports. The journal commands assemble their
// reports as markdown; this package turns that markdown into HTML, either as
// a fragment or as a complete standalone page.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// pageStyle is injected into the head of complete pages. Reports are mostly
// tables, so the style is about making those readable.
const pageStyle = `<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; padding: 0 1em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #bbb; padding: 0.3em 0.7em; text-align: left; }
th { background: #f0f0f0; }
h1, h2, h3 { border-bottom: 1px solid #ddd; padding-bottom: 0.2em; }
</style>`

var titleEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func newParser() *parser.Parser {
	ext := parser.CommonExtensions | parser.Attributes
	return parser.NewWithExtensions(ext)
}

// ToHTML renders markdown to an HTML fragment.
func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	}
	renderer := html.NewRenderer(opts)
	doc := newParser().Parse(md)
	return string(markdown.Render(doc, renderer))
}

// RenderPage renders markdown as a complete HTML page with the given title.
func RenderPage(title string, md []byte) string {
	opts := html.RendererOptions{
		Title: titleEscaper.Replace(title),
		Head:  []byte(pageStyle),
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
	}
	renderer := html.NewRenderer(opts)
	doc := newParser().Parse(md)
	return string(markdown.Render(doc, renderer))
}
