package markdown

import (
	"strings"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

// scanTable collects the maximal run of pipe rows starting at start and
// parses it. Returns the block and the index of the first line past the run.
func scanTable(lines []string, start int) (blocks.Block, int) {
	end := start
	for end < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[end]), "|") {
		end++
	}
	return parseTable(lines[start:end]), end
}

// parseTable converts pipe rows into a table block. Line 0 is the header and
// fixes the column count, line 1 is discarded as the separator row without
// validating its syntax, the rest are data rows padded or truncated to the
// header width. Runs too short to yield a header plus at least one data row
// degrade to a code block holding the raw lines, so content is demoted but
// never discarded.
func parseTable(lines []string) blocks.Block {
	if len(lines) < 2 {
		return rawLinesBlock(lines)
	}
	header := splitRow(lines[0])
	var rows [][]string
	for _, line := range lines[2:] {
		if cells := splitRow(line); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) == 0 {
		return rawLinesBlock(lines)
	}

	width := len(header)
	cellRows := make([][][]blocks.TextRun, 0, len(rows)+1)
	cellRows = append(cellRows, tokenizeRow(header))
	for _, row := range rows {
		cellRows = append(cellRows, tokenizeRow(normalizeRow(row, width)))
	}
	return blocks.NewTable(width, cellRows)
}

// splitRow splits a pipe row into trimmed cells, dropping the first and last
// fields produced by the leading and trailing pipes.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) <= 2 {
		return nil
	}
	cells := make([]string, 0, len(parts)-2)
	for _, c := range parts[1 : len(parts)-1] {
		cells = append(cells, strings.TrimSpace(c))
	}
	return cells
}

// normalizeRow pads a short row with empty cells or truncates a long one so
// every row matches the header width.
func normalizeRow(cells []string, width int) []string {
	if len(cells) > width {
		return cells[:width]
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells
}

func tokenizeRow(cells []string) [][]blocks.TextRun {
	out := make([][]blocks.TextRun, 0, len(cells))
	for _, c := range cells {
		out = append(out, Tokenize(c))
	}
	return out
}

func rawLinesBlock(lines []string) blocks.Block {
	return blocks.NewCode("plain text", strings.Join(lines, "\n"))
}
