package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

func compileOne(t *testing.T, source string) blocks.Block {
	t.Helper()
	out := Compile(source, nil, DefaultConfig())
	if len(out) != 1 {
		t.Fatalf("expected exactly 1 block for %q, got %d", source, len(out))
	}
	return out[0]
}

func TestCompile_HeadingLevels(t *testing.T) {
	tests := []struct {
		input    string
		wantType string
		wantText string
	}{
		{"# Top", blocks.TypeHeading1, "Top"},
		{"## Middle", blocks.TypeHeading2, "Middle"},
		{"### Lower", blocks.TypeHeading3, "Lower"},
	}
	for _, tt := range tests {
		b := compileOne(t, tt.input)
		if b.Type != tt.wantType {
			t.Errorf("%q: expected type %q, got %q", tt.input, tt.wantType, b.Type)
		}
		if got := blocks.PlainText(b.Runs()); got != tt.wantText {
			t.Errorf("%q: expected text %q, got %q", tt.input, tt.wantText, got)
		}
	}
}

func TestCompile_DeepHeadingDegradesToBoldParagraph(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#### Four", "  • Four"},
		{"##### Deep", "    • Deep"},
		{"###### Six", "      • Six"},
	}
	for _, tt := range tests {
		b := compileOne(t, tt.input)
		if b.Type != blocks.TypeParagraph {
			t.Fatalf("%q: expected paragraph, got %q", tt.input, b.Type)
		}
		runs := b.Runs()
		if len(runs) != 1 {
			t.Fatalf("%q: expected a single run, got %d", tt.input, len(runs))
		}
		if got := runs[0].Text.Content; got != tt.want {
			t.Errorf("%q: expected text %q, got %q", tt.input, tt.want, got)
		}
		if a := runs[0].Annotations; a == nil || !a.Bold {
			t.Errorf("%q: expected bold annotation, got %+v", tt.input, a)
		}
	}
}

func TestCompile_HashWithoutSpaceBecomesParagraph(t *testing.T) {
	b := compileOne(t, "#NoSpace")
	if b.Type != blocks.TypeParagraph {
		t.Errorf("expected paragraph, got %q", b.Type)
	}
	if got := blocks.PlainText(b.Runs()); got != "#NoSpace" {
		t.Errorf("raw line must survive, got %q", got)
	}
}

func TestCompile_NumberedListRewrite(t *testing.T) {
	b := compileOne(t, "3. Buy milk")
	if b.Type != blocks.TypeParagraph {
		t.Fatalf("expected paragraph, got %q", b.Type)
	}
	if got := blocks.PlainText(b.Runs()); got != "3. Buy milk" {
		t.Errorf("expected %q, got %q", "3. Buy milk", got)
	}
}

func TestCompile_BareNumberedMarkerKeepsRawLine(t *testing.T) {
	b := compileOne(t, "1. ")
	if b.Type != blocks.TypeParagraph {
		t.Fatalf("expected paragraph, got %q", b.Type)
	}
	if got := blocks.PlainText(b.Runs()); got != "1. " {
		t.Errorf("expected raw line %q, got %q", "1. ", got)
	}
}

func TestCompile_FenceWithLanguage(t *testing.T) {
	b := compileOne(t, "```py\nx=1\n```")
	if b.Type != blocks.TypeCode {
		t.Fatalf("expected code block, got %q", b.Type)
	}
	if b.Code.Language != "py" {
		t.Errorf("expected language %q, got %q", "py", b.Code.Language)
	}
	if got := b.Code.RichText[0].Text.Content; got != "x=1" {
		t.Errorf("expected body %q, got %q", "x=1", got)
	}
}

func TestCompile_UnterminatedFenceConsumesToEnd(t *testing.T) {
	b := compileOne(t, "```\nx=1")
	if b.Type != blocks.TypeCode {
		t.Fatalf("expected code block, got %q", b.Type)
	}
	if b.Code.Language != "plain text" {
		t.Errorf("expected default language, got %q", b.Code.Language)
	}
	if got := b.Code.RichText[0].Text.Content; got != "x=1" {
		t.Errorf("expected body %q, got %q", "x=1", got)
	}
}

func TestCompile_FenceBodyKeptVerbatim(t *testing.T) {
	src := "```go\nfor i := range n {\n\t// **not bold** inside code\n}\n```"
	b := compileOne(t, src)
	want := "for i := range n {\n\t// **not bold** inside code\n}"
	if got := b.Code.RichText[0].Text.Content; got != want {
		t.Errorf("expected verbatim body %q, got %q", want, got)
	}
}

func TestCompile_ResolvedPlaceholderBecomesEmbed(t *testing.T) {
	src := "before\n" + Marker("/tmp/chart.png") + "\nafter"
	resolved := map[string]string{"/tmp/chart.png": "https://cdn.example.com/chart.jpg"}
	out := Compile(src, resolved, DefaultConfig())

	if len(out) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(out))
	}
	if out[0].Type != blocks.TypeParagraph || out[2].Type != blocks.TypeParagraph {
		t.Errorf("expected paragraphs around the embed, got %q and %q", out[0].Type, out[2].Type)
	}
	if out[1].Type != blocks.TypeEmbed {
		t.Fatalf("expected embed, got %q", out[1].Type)
	}
	if got := out[1].Embed.URL; got != "https://cdn.example.com/chart.jpg" {
		t.Errorf("expected resolved url, got %q", got)
	}
}

func TestCompile_UnresolvedPlaceholderKeepsStandIn(t *testing.T) {
	out := Compile(Marker("/tmp/missing.png"), nil, DefaultConfig())

	if len(out) != 1 {
		t.Fatalf("expected 1 stand-in block, got %d", len(out))
	}
	b := out[0]
	if b.Type != blocks.TypeParagraph {
		t.Fatalf("expected paragraph stand-in, got %q", b.Type)
	}
	runs := b.Runs()
	if got := blocks.PlainText(runs); got != "/tmp/missing.png" {
		t.Errorf("stand-in must carry the key, got %q", got)
	}
	if a := runs[0].Annotations; a == nil || !a.Code {
		t.Errorf("expected code annotation on the stand-in, got %+v", a)
	}
}

func TestCompile_BlankLinesEmitNothing(t *testing.T) {
	out := Compile("\n\n   \n\n", nil, DefaultConfig())
	if len(out) != 0 {
		t.Errorf("expected no blocks, got %d", len(out))
	}
}

func TestCompile_LongParagraphSplitsWithinBudget(t *testing.T) {
	cfg := Config{TextLimit: 50}
	src := strings.Repeat("word ", 30) // 150 chars in one plain run? No: one run, kept whole.
	out := Compile(strings.TrimSpace(src), nil, cfg)

	// A single plain run is never cut, so this stays one block.
	if len(out) != 1 {
		t.Fatalf("expected 1 block for a single run, got %d", len(out))
	}

	// Multiple runs do split under the budget.
	src = "aaaa aaaa *i* bbbb bbbb *j* cccc cccc"
	out = Compile(src, nil, Config{TextLimit: 12})
	if len(out) < 2 {
		t.Fatalf("expected a multi-block split, got %d", len(out))
	}
	for i, b := range out {
		if b.Type != blocks.TypeParagraph {
			t.Errorf("block %d: expected paragraph, got %q", i, b.Type)
		}
		runs := b.Runs()
		if n := blocks.Length(runs); n > 12 && len(runs) > 1 {
			t.Errorf("block %d: %d chars across %d runs exceeds the budget", i, n, len(runs))
		}
	}
}

func TestCompile_SplitBulletKeepsChildrenOnFirstFragment(t *testing.T) {
	lines := []string{
		"- aaaa *i* bbbb",
		"  - child",
	}
	cfg := Config{TextLimit: 6}
	out := Compile(strings.Join(lines, "\n"), nil, cfg)

	if len(out) < 2 {
		t.Fatalf("expected the oversized bullet to split, got %d blocks", len(out))
	}
	for i, b := range out {
		if b.Type != blocks.TypeBullet {
			t.Fatalf("block %d: expected bullet, got %q", i, b.Type)
		}
	}
	if len(out[0].ChildBlocks()) != 1 {
		t.Errorf("first fragment must carry the children, got %d", len(out[0].ChildBlocks()))
	}
	for i, b := range out[1:] {
		if len(b.ChildBlocks()) != 0 {
			t.Errorf("fragment %d must not duplicate children, got %d", i+1, len(b.ChildBlocks()))
		}
	}
}

func TestCompile_MixedDocumentOrder(t *testing.T) {
	src := strings.Join([]string{
		"# Report",
		"",
		"Intro paragraph.",
		"",
		"| K | V |",
		"|---|---|",
		"| a | 1 |",
		"",
		"- point one",
		"  - detail",
		"",
		"```sql",
		"SELECT 1;",
		"```",
		"",
		"2. second step",
	}, "\n")

	out := Compile(src, nil, DefaultConfig())
	wantTypes := []string{
		blocks.TypeHeading1,
		blocks.TypeParagraph,
		blocks.TypeTable,
		blocks.TypeBullet,
		blocks.TypeCode,
		blocks.TypeParagraph,
	}
	if len(out) != len(wantTypes) {
		t.Fatalf("expected %d blocks, got %d", len(wantTypes), len(out))
	}
	for i, want := range wantTypes {
		if out[i].Type != want {
			t.Errorf("block %d: expected %q, got %q", i, want, out[i].Type)
		}
	}
	if errs := blocks.Validate(out, blocks.DefaultTextLimit); len(errs) != 0 {
		t.Errorf("compiled output failed validation: %v", errs)
	}
}

func TestCompile_NumberedLineAfterBulletsLeftForDispatcher(t *testing.T) {
	src := strings.Join([]string{
		"- bullet",
		"  1. numbered under bullet",
		"- next bullet",
	}, "\n")
	out := Compile(src, nil, DefaultConfig())

	if len(out) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(out))
	}
	if out[0].Type != blocks.TypeBullet || out[2].Type != blocks.TypeBullet {
		t.Errorf("expected bullets around the numbered line, got %q and %q", out[0].Type, out[2].Type)
	}
	if out[1].Type != blocks.TypeParagraph {
		t.Errorf("expected the numbered line as a paragraph, got %q", out[1].Type)
	}
	if got := blocks.PlainText(out[1].Runs()); got != "1. numbered under bullet" {
		t.Errorf("expected rewritten numbered text, got %q", got)
	}
}

func TestCompile_DeterministicOutput(t *testing.T) {
	src := "# T\n\n- a\n  - b\n\n| X |\n|---|\n| 1 |\n"
	resolved := map[string]string{"k": "https://example.com"}
	a := Compile(src, resolved, DefaultConfig())
	b := Compile(src, resolved, DefaultConfig())
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical output for identical input")
	}
}

func TestCompile_RoundTripContentPreserved(t *testing.T) {
	src := strings.Join([]string{
		"# Title with **bold**",
		"Paragraph *styled* text.",
		"- item `one`",
	}, "\n")
	out := Compile(src, nil, DefaultConfig())

	var got []string
	for _, b := range out {
		got = append(got, blocks.PlainText(b.Runs()))
	}
	want := []string{"Title with bold", "Paragraph styled text.", "item one"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected recovered text %v, got %v", want, got)
	}
}
