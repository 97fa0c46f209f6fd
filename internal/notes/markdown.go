package notes

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown wraps a goldmark instance for the two things the app needs from
// note content: HTML for display and plain text for search matching.
type Markdown struct {
	md goldmark.Markdown
}

func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Render converts markdown to HTML. On conversion failure the raw content
// is returned unchanged.
func (m *Markdown) Render(content string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}

// PlainText strips markup from note content by walking the parsed AST and
// collecting only text segments. Search compares against this, so "**milk**"
// matches a query for "milk".
func (m *Markdown) PlainText(content string) string {
	src := []byte(content)
	doc := m.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate blocks so words from adjacent paragraphs do not
			// concatenate into accidental matches.
			if n.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.AutoLink:
			buf.Write(t.URL(src))
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
