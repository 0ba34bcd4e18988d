package markdown

import (
	"regexp"
	"strings"

	"github.com/pagemark-io/pagemark/internal/blocks"
)

var bulletMarker = regexp.MustCompile(`^\s*[-*]\s+`)

// parseBullets groups consecutive bullet lines starting at start into
// list-item blocks, recursing to collect strictly deeper lines as children.
// Depth is the raw leading-whitespace count rather than a fixed tab width, so
// siblings at uneven indents are tolerated as long as each sits deeper than
// its parent; nesting depth is unbounded. Blank lines are skipped. The scan
// stops at the first line indented at or above parentIndent, or at any
// non-bullet line, which is left unconsumed for the caller. Returns the items
// and the index of the first unconsumed line.
func parseBullets(lines []string, start, parentIndent int, cfg Config) ([]blocks.Block, int) {
	var items []blocks.Block
	i := start
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		indent := leadingSpace(line)
		if indent <= parentIndent || !bulletMarker.MatchString(line) {
			break
		}
		text := bulletMarker.ReplaceAllString(line, "")
		children, next := parseBullets(lines, i+1, indent, cfg)
		items = append(items, textBlocks(blocks.TypeBullet, text, children, cfg)...)
		i = next
	}
	return items, i
}

func leadingSpace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t\v\f\r"))
}
