package blocks

import "fmt"

// Validate checks a block sequence against the structural limits the page API
// enforces: per-payload character budget (a single run may exceed it, since
// runs are never split), exact table widths, children only where the API
// accepts them. Returns one error per violation. Validation is advisory; the
// compiler's own output always passes, hand-built sequences may not.
func Validate(blks []Block, limit int) []error {
	var errs []error
	for i, b := range blks {
		errs = append(errs, validateBlock(b, limit, fmt.Sprintf("block %d", i))...)
	}
	return errs
}

func validateBlock(b Block, limit int, path string) []error {
	var errs []error
	switch b.Type {
	case TypeParagraph, TypeHeading1, TypeHeading2, TypeHeading3, TypeBullet:
		runs := b.Runs()
		if len(runs) == 0 {
			errs = append(errs, fmt.Errorf("%s: %s has no rich text runs", path, b.Type))
			break
		}
		if n := Length(runs); n > limit && len(runs) > 1 {
			errs = append(errs, fmt.Errorf("%s: %s payload is %d chars across %d runs, limit %d", path, b.Type, n, len(runs), limit))
		}
		if b.Type != TypeBullet && len(b.ChildBlocks()) > 0 {
			errs = append(errs, fmt.Errorf("%s: %s carries children", path, b.Type))
		}
	case TypeCode:
		if b.Code == nil || len(b.Code.RichText) != 1 {
			errs = append(errs, fmt.Errorf("%s: code block must hold exactly one run", path))
		}
	case TypeTable:
		if b.Table == nil {
			errs = append(errs, fmt.Errorf("%s: table block has no payload", path))
			break
		}
		for j, row := range b.Table.Children {
			if row.Type != TypeTableRow || row.TableRow == nil {
				errs = append(errs, fmt.Errorf("%s row %d: table child is %s, want table_row", path, j, row.Type))
				continue
			}
			if got := len(row.TableRow.Cells); got != b.Table.TableWidth {
				errs = append(errs, fmt.Errorf("%s row %d: %d cells, want %d", path, j, got, b.Table.TableWidth))
			}
		}
	case TypeEmbed:
		if b.Embed == nil || b.Embed.URL == "" {
			errs = append(errs, fmt.Errorf("%s: embed block has no url", path))
		}
	}
	for j, child := range b.ChildBlocks() {
		errs = append(errs, validateBlock(child, limit, fmt.Sprintf("%s child %d", path, j))...)
	}
	return errs
}
