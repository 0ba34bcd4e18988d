package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVConverter renders CSV data as a markdown pipe table, which the compiler
// turns into a table block.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := baseName(filename)
	if len(records) == 0 {
		return &Result{Title: title}, nil
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, cell := range cells {
			b.WriteString(" ")
			b.WriteString(sanitizeCell(cell))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	header := records[0]
	writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range records[1:] {
		writeRow(row)
	}

	return &Result{Title: title, Markdown: b.String()}, nil
}

// sanitizeCell keeps cell text from breaking the pipe-table row shape.
func sanitizeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\n", " ")
	return strings.ReplaceAll(cell, "|", "/")
}
