package convert

import (
	"strings"
	"testing"
)

func TestMarkdownConverter_PassthroughAndTitle(t *testing.T) {
	input := "# Market Report\n\nBody line.\n"
	c := &MarkdownConverter{}
	res, err := c.Convert(strings.NewReader(input), "report.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "Market Report" {
		t.Errorf("expected title %q, got %q", "Market Report", res.Title)
	}
	if res.Markdown != input {
		t.Errorf("expected passthrough body, got %q", res.Markdown)
	}
}

func TestMarkdownConverter_TitleFallsBackToFilename(t *testing.T) {
	c := &MarkdownConverter{}
	res, err := c.Convert(strings.NewReader("no headings here"), "notes/weekly.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "weekly" {
		t.Errorf("expected title %q, got %q", "weekly", res.Title)
	}
}

func TestMarkdownConverter_NormalizesCRLF(t *testing.T) {
	c := &MarkdownConverter{}
	res, err := c.Convert(strings.NewReader("# Title\r\nline one\r\nline two\r\n"), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Markdown, "\r") {
		t.Errorf("expected CR stripped, got %q", res.Markdown)
	}
	if res.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", res.Title)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		fallback string
		want     string
	}{
		{"first heading wins", "intro text\n\n# First\n\n## Second", "fb", "First"},
		{"deep heading counts", "### Only Heading\n\ntext", "fb", "Only Heading"},
		{"fenced heading ignored", "```\n# not a title\n```\n\n# Real Title", "fb", "Real Title"},
		{"no heading falls back", "plain text only", "fb", "fb"},
		{"empty source falls back", "", "fb", "fb"},
	}
	for _, tc := range cases {
		if got := DeriveTitle(tc.source, tc.fallback); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestRegistry_ForFile(t *testing.T) {
	reg := Registry{}

	conv, err := reg.ForFile("doc.MD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := conv.(*MarkdownConverter); !ok {
		t.Errorf("expected *MarkdownConverter for .MD, got %T", conv)
	}

	conv, err = reg.ForFile("data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := conv.(*CSVConverter); !ok {
		t.Errorf("expected *CSVConverter for .csv, got %T", conv)
	}

	if _, err := reg.ForFile("binary.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRegistry_PDFToTextPropagates(t *testing.T) {
	conv, err := Registry{PDFToText: true}.ForFile("doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := conv.(*PDFConverter)
	if !ok {
		t.Fatalf("expected *PDFConverter, got %T", conv)
	}
	if !p.FallbackPdftotext {
		t.Error("expected pdftotext fallback enabled")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"doc.md", true},
		{"doc.MD", true},
		{"notes.markdown", true},
		{"report.docx", true},
		{"data.csv", true},
		{"page.htm", true},
		{"binary.exe", false},
		{"no_extension", false},
	}
	for _, tc := range cases {
		if got := IsSupportedExtension(tc.filename); got != tc.want {
			t.Errorf("IsSupportedExtension(%q): expected %v, got %v", tc.filename, tc.want, got)
		}
	}
}
