package convert

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter passes markdown through untouched apart from line-ending
// normalization, deriving the title from the first heading.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(r io.Reader, filename string) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body := strings.ReplaceAll(string(src), "\r\n", "\n")
	return &Result{
		Title:    DeriveTitle(body, baseName(filename)),
		Markdown: body,
	}, nil
}

// DeriveTitle returns the text of the first heading in the markdown source,
// or fallback when there is none. Headings inside fenced code do not count.
func DeriveTitle(source, fallback string) string {
	src := []byte(source)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		if title := strings.TrimSpace(string(h.Text(src))); title != "" {
			return title
		}
	}
	return fallback
}
