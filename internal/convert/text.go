package convert

import (
	"bufio"
	"io"
	"strings"
)

// TextConverter handles plain text files. Lines pass through one-to-one, so
// the compiler sees one paragraph per line; CRLF endings are normalized.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Title:    baseName(filename),
		Markdown: strings.Join(lines, "\n"),
	}, nil
}
