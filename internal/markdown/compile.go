package markdown

import (
	"regexp"
	"strings"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

// Config carries the compiler's tunables.
type Config struct {
	TextLimit int // Per-payload character ceiling of the target page API.
}

// DefaultConfig returns the hosted page API limits.
func DefaultConfig() Config {
	return Config{TextLimit: blocks.DefaultTextLimit}
}

var (
	numberedMarker = regexp.MustCompile(`^\s*\d+\.\s`)
	numberedItem   = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)`)
	deepHeading    = regexp.MustCompile(`^(#{4,6})\s+(.+)`)
)

// Compile converts markdown source into an ordered block sequence. resolved
// maps attachment keys (see ExtractAttachments) to uploaded URLs; a key with
// no entry degrades to a stand-in paragraph naming the key. Compile holds no
// state across calls and never fails: malformed constructs degrade to
// simpler blocks instead of being dropped or raising an error.
func Compile(source string, resolved map[string]string, cfg Config) []blocks.Block {
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = blocks.DefaultTextLimit
	}

	var out []blocks.Block
	for _, seg := range splitMarkers(source) {
		if seg.key == "" {
			out = append(out, compileLines(strings.Split(seg.text, "\n"), cfg)...)
			continue
		}
		if url, ok := resolved[seg.key]; ok {
			out = append(out, blocks.NewEmbed(url))
			continue
		}
		out = append(out, blocks.NewText(blocks.TypeParagraph, []blocks.TextRun{
			blocks.Annotated(seg.key, blocks.Annotations{Code: true}),
		}, nil))
	}
	return out
}

// compileLines walks a line stream and dispatches block-opening markers in
// precedence order: code fence, pipe table, heading, numbered item, bullet,
// paragraph. Blank lines emit nothing.
func compileLines(lines []string, cfg Config) []blocks.Block {
	var out []blocks.Block
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		switch {
		case strings.HasPrefix(line, "```"):
			block, next := scanFence(lines, i)
			out = append(out, block)
			i = next
		case strings.HasPrefix(line, "|"):
			block, next := scanTable(lines, i)
			out = append(out, block)
			i = next
		case strings.HasPrefix(line, "#"):
			out = append(out, headingBlocks(line, cfg)...)
			i++
		case numberedMarker.MatchString(line):
			out = append(out, numberedBlocks(line, cfg)...)
			i++
		case bulletMarker.MatchString(line):
			items, next := parseBullets(lines, i, -1, cfg)
			out = append(out, items...)
			i = next
		default:
			out = append(out, textBlocks(blocks.TypeParagraph, line, nil, cfg)...)
			i++
		}
	}
	return out
}

// scanFence consumes a fenced code region opening at start. The trimmed
// remainder of the opening line is the language tag, defaulting to
// "plain text". The body runs verbatim up to the next line starting with a
// fence marker; with no closing fence it runs through the end of input.
// Returns the block and the index of the first line past the region.
func scanFence(lines []string, start int) (blocks.Block, int) {
	language := strings.TrimSpace(lines[start][3:])
	if language == "" {
		language = "plain text"
	}
	end := start + 1
	for end < len(lines) && !strings.HasPrefix(lines[end], "```") {
		end++
	}
	body := strings.Join(lines[start+1:end], "\n")
	next := end
	if next < len(lines) {
		next++
	}
	return blocks.NewCode(language, body), next
}

// headingBlocks renders #/##/### as heading blocks. The page API caps
// heading depth at three, so #### through ###### degrade to a bold paragraph
// indented two spaces per extra level with a leading bullet glyph. A hash
// line matching no heading shape falls through to a plain paragraph.
func headingBlocks(line string, cfg Config) []blocks.Block {
	if m := deepHeading.FindStringSubmatch(line); m != nil {
		level := len(m[1])
		text := strings.Repeat("  ", level-3) + "• " + m[2]
		return runsToBlocks(blocks.TypeParagraph, []blocks.TextRun{
			blocks.Annotated(text, blocks.Annotations{Bold: true}),
		}, nil, cfg)
	}
	switch {
	case strings.HasPrefix(line, "### "):
		return textBlocks(blocks.TypeHeading3, line[4:], nil, cfg)
	case strings.HasPrefix(line, "## "):
		return textBlocks(blocks.TypeHeading2, line[3:], nil, cfg)
	case strings.HasPrefix(line, "# "):
		return textBlocks(blocks.TypeHeading1, line[2:], nil, cfg)
	}
	return textBlocks(blocks.TypeParagraph, line, nil, cfg)
}

// numberedBlocks re-emits a numbered list line as a plain paragraph keeping
// the literal "N. text" form: the page API loses children nested under
// numbered items, so the numbering survives as text instead of as a distinct
// block kind. A marker with no following text degrades to a paragraph of the
// raw line.
func numberedBlocks(line string, cfg Config) []blocks.Block {
	if m := numberedItem.FindStringSubmatch(line); m != nil {
		return textBlocks(blocks.TypeParagraph, m[1]+". "+m[2], nil, cfg)
	}
	return textBlocks(blocks.TypeParagraph, line, nil, cfg)
}
