package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

// Inline delimiter spans, longest form first so *** wins over ** wins over *.
// Spans are non-greedy and never nest: content inside a match is taken
// verbatim.
var inlinePattern = regexp.MustCompile("\\*\\*\\*.*?\\*\\*\\*|\\*\\*.*?\\*\\*|\\*.*?\\*|`.*?`")

// Tokenize splits one line of text into an ordered sequence of annotated
// runs. Text outside any delimiter span becomes plain runs. An empty line
// yields a single empty run, so every text block carries at least one run.
// Tokenize never fails; text that matches no delimiter is plain.
func Tokenize(line string) []blocks.TextRun {
	if line == "" {
		return []blocks.TextRun{blocks.Plain("")}
	}
	var runs []blocks.TextRun
	last := 0
	for _, span := range inlinePattern.FindAllStringIndex(line, -1) {
		if span[0] > last {
			runs = append(runs, blocks.Plain(line[last:span[0]]))
		}
		runs = append(runs, styledRun(line[span[0]:span[1]]))
		last = span[1]
	}
	if last < len(line) {
		runs = append(runs, blocks.Plain(line[last:]))
	}
	return runs
}

// styledRun classifies one matched delimiter span. Checked longest delimiter
// first; the pattern guarantees the span starts and ends with its delimiter.
func styledRun(part string) blocks.TextRun {
	switch {
	case strings.HasPrefix(part, "***") && strings.HasSuffix(part, "***"):
		return blocks.Annotated(trimDelim(part, 3), blocks.Annotations{Bold: true, Italic: true})
	case strings.HasPrefix(part, "**") && strings.HasSuffix(part, "**"):
		return blocks.Annotated(trimDelim(part, 2), blocks.Annotations{Bold: true})
	case strings.HasPrefix(part, "*"):
		return blocks.Annotated(trimDelim(part, 1), blocks.Annotations{Italic: true})
	case strings.HasPrefix(part, "`"):
		return blocks.Annotated(trimDelim(part, 1), blocks.Annotations{Code: true})
	}
	return blocks.Plain(part)
}

// trimDelim strips an n-char delimiter from both ends. Degenerate spans too
// short to hold two delimiters (e.g. "**" classified as bold) collapse to
// empty content rather than slicing out of range.
func trimDelim(part string, n int) string {
	if len(part) < 2*n {
		return ""
	}
	return part[n : len(part)-n]
}

// SplitRuns partitions runs into pages whose summed character count stays
// within limit, greedily left to right. Run contents are never cut: a single
// run longer than limit is kept whole on its own page. Page order mirrors run
// order. Empty input yields one page holding one empty run.
func SplitRuns(runs []blocks.TextRun, limit int) [][]blocks.TextRun {
	var pages [][]blocks.TextRun
	var cur []blocks.TextRun
	size := 0
	for _, r := range runs {
		n := utf8.RuneCountInString(r.Text.Content)
		if size+n > limit && len(cur) > 0 {
			pages = append(pages, cur)
			cur = nil
			size = 0
		}
		cur = append(cur, r)
		size += n
	}
	if len(cur) > 0 {
		pages = append(pages, cur)
	}
	if len(pages) == 0 {
		pages = append(pages, []blocks.TextRun{blocks.Plain("")})
	}
	return pages
}

// textBlocks tokenizes line and emits one or more same-type blocks within the
// character budget.
func textBlocks(typ, line string, children []blocks.Block, cfg Config) []blocks.Block {
	return runsToBlocks(typ, Tokenize(line), children, cfg)
}

// runsToBlocks splits runs into budget-sized pages and wraps each page in a
// block of the given type. When the split produces several siblings, only the
// first carries the children list; fragments never duplicate the subtree.
func runsToBlocks(typ string, runs []blocks.TextRun, children []blocks.Block, cfg Config) []blocks.Block {
	pages := SplitRuns(runs, cfg.TextLimit)
	out := make([]blocks.Block, 0, len(pages))
	for i, page := range pages {
		var kids []blocks.Block
		if i == 0 {
			kids = children
		}
		out = append(out, blocks.NewText(typ, page, kids))
	}
	return out
}
