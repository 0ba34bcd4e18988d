package convert

import (
	"strings"
	"testing"
)

func TestHTMLConverter_HeadingsAndParagraphs(t *testing.T) {
	input := `<html><head><title>Doc Title</title></head><body>
<h1>Overview</h1>
<p>First para.</p>
<h2>Detail</h2>
<ul><li>one</li><li>two</li></ul>
</body></html>`

	c := &HTMLConverter{}
	res, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "Doc Title" {
		t.Errorf("expected title %q, got %q", "Doc Title", res.Title)
	}

	want := "# Overview\n\nFirst para.\n\n## Detail\n\n- one\n\n- two"
	if res.Markdown != want {
		t.Errorf("expected %q, got %q", want, res.Markdown)
	}
}

func TestHTMLConverter_TitleFallsBackToFirstHeading(t *testing.T) {
	input := `<html><body><h1>From H1</h1><p>text</p></body></html>`
	c := &HTMLConverter{}
	res, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "From H1" {
		t.Errorf("expected title %q, got %q", "From H1", res.Title)
	}
}

func TestHTMLConverter_SkipsNonContentElements(t *testing.T) {
	input := `<html><body>
<nav><p>menu item</p></nav>
<script>var x = 1;</script>
<p>real content</p>
<footer><p>copyright</p></footer>
</body></html>`

	c := &HTMLConverter{}
	res, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Markdown != "real content" {
		t.Errorf("expected only body content, got %q", res.Markdown)
	}
}

func TestHTMLConverter_CollapsesInteriorWhitespace(t *testing.T) {
	input := "<html><body><p>wrapped\n   source   text</p></body></html>"
	c := &HTMLConverter{}
	res, err := c.Convert(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Markdown != "wrapped source text" {
		t.Errorf("expected collapsed whitespace, got %q", res.Markdown)
	}
}
