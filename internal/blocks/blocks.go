package blocks

import "unicode/utf8"

// Block type identifiers as the page API spells them.
const (
	TypeParagraph  = "paragraph"
	TypeHeading1   = "heading_1"
	TypeHeading2   = "heading_2"
	TypeHeading3   = "heading_3"
	TypeBullet     = "bulleted_list_item"
	TypeCode       = "code"
	TypeTable      = "table"
	TypeTableRow   = "table_row"
	TypeEmbed      = "embed"
	TypeLinkToPage = "link_to_page"
)

// DefaultTextLimit is the per-payload character ceiling the page API enforces
// on one rich_text collection.
const DefaultTextLimit = 2000

// Block is one node of a page. It marshals to the block API wire shape
// {"object":"block","type":T,T:{...}}: exactly one payload field is non-nil
// and its JSON key matches Type.
type Block struct {
	Object string `json:"object"`
	Type   string `json:"type"`

	Paragraph  *TextPayload       `json:"paragraph,omitempty"`
	Heading1   *TextPayload       `json:"heading_1,omitempty"`
	Heading2   *TextPayload       `json:"heading_2,omitempty"`
	Heading3   *TextPayload       `json:"heading_3,omitempty"`
	Bullet     *TextPayload       `json:"bulleted_list_item,omitempty"`
	Code       *CodePayload       `json:"code,omitempty"`
	Table      *TablePayload      `json:"table,omitempty"`
	TableRow   *TableRowPayload   `json:"table_row,omitempty"`
	Embed      *EmbedPayload      `json:"embed,omitempty"`
	LinkToPage *LinkToPagePayload `json:"link_to_page,omitempty"`
}

// TextPayload backs paragraph, heading and bullet blocks. Children nest
// inside the payload, not on the block itself.
type TextPayload struct {
	RichText []TextRun `json:"rich_text"`
	Children []Block   `json:"children,omitempty"`
}

// CodePayload holds a code block body as a single plain run plus a language
// tag.
type CodePayload struct {
	RichText []TextRun `json:"rich_text"`
	Language string    `json:"language"`
}

// TablePayload holds a table. Rows are table_row child blocks; every row has
// exactly TableWidth cells.
type TablePayload struct {
	TableWidth      int     `json:"table_width"`
	HasColumnHeader bool    `json:"has_column_header"`
	HasRowHeader    bool    `json:"has_row_header"`
	Children        []Block `json:"children"`
}

// TableRowPayload is one table row: one cell per column, each cell its own
// rich-text collection.
type TableRowPayload struct {
	Cells [][]TextRun `json:"cells"`
}

// EmbedPayload references an externally hosted resource by URL.
type EmbedPayload struct {
	URL string `json:"url"`
}

// LinkToPagePayload links to another page by id.
type LinkToPagePayload struct {
	Type   string `json:"type"`
	PageID string `json:"page_id"`
}

// TextRun is an annotated span of text, the atomic unit inside any rich-text
// collection. Annotations is nil for plain text so the key is omitted on the
// wire.
type TextRun struct {
	Type        string       `json:"type"`
	Text        TextContent  `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// TextContent wraps the run's literal text.
type TextContent struct {
	Content string `json:"content"`
}

// Annotations are the inline styles a run can carry. Zero-value fields are
// omitted on the wire.
type Annotations struct {
	Bold   bool `json:"bold,omitempty"`
	Italic bool `json:"italic,omitempty"`
	Code   bool `json:"code,omitempty"`
}

// Plain returns an unannotated run.
func Plain(content string) TextRun {
	return TextRun{Type: "text", Text: TextContent{Content: content}}
}

// Annotated returns a run carrying a. A zero a degrades to a plain run.
func Annotated(content string, a Annotations) TextRun {
	r := Plain(content)
	if a != (Annotations{}) {
		r.Annotations = &a
	}
	return r
}

// NewText builds a text-bearing block of the given type. Children are only
// meaningful for TypeBullet; unknown types fall back to a paragraph so a bad
// caller still produces a renderable block.
func NewText(typ string, runs []TextRun, children []Block) Block {
	p := &TextPayload{RichText: runs, Children: children}
	b := Block{Object: "block", Type: typ}
	switch typ {
	case TypeHeading1:
		b.Heading1 = p
	case TypeHeading2:
		b.Heading2 = p
	case TypeHeading3:
		b.Heading3 = p
	case TypeBullet:
		b.Bullet = p
	case TypeParagraph:
		b.Paragraph = p
	default:
		b.Type = TypeParagraph
		b.Paragraph = p
	}
	return b
}

// NewCode builds a code block. The body is held verbatim in one plain run.
func NewCode(language, text string) Block {
	return Block{
		Object: "block",
		Type:   TypeCode,
		Code:   &CodePayload{RichText: []TextRun{Plain(text)}, Language: language},
	}
}

// NewTable builds a table block from per-row cell collections. The first row
// is the column header.
func NewTable(width int, rows [][][]TextRun) Block {
	children := make([]Block, 0, len(rows))
	for _, cells := range rows {
		children = append(children, Block{
			Object:   "block",
			Type:     TypeTableRow,
			TableRow: &TableRowPayload{Cells: cells},
		})
	}
	return Block{
		Object: "block",
		Type:   TypeTable,
		Table: &TablePayload{
			TableWidth:      width,
			HasColumnHeader: true,
			HasRowHeader:    false,
			Children:        children,
		},
	}
}

// NewEmbed builds an embed block for an already-uploaded resource.
func NewEmbed(url string) Block {
	return Block{Object: "block", Type: TypeEmbed, Embed: &EmbedPayload{URL: url}}
}

// NewPageLink builds a link_to_page block pointing at pageID.
func NewPageLink(pageID string) Block {
	return Block{
		Object:     "block",
		Type:       TypeLinkToPage,
		LinkToPage: &LinkToPagePayload{Type: "page_id", PageID: pageID},
	}
}

// Runs returns the block's rich-text collection, or nil for kinds that carry
// none.
func (b Block) Runs() []TextRun {
	switch {
	case b.Paragraph != nil:
		return b.Paragraph.RichText
	case b.Heading1 != nil:
		return b.Heading1.RichText
	case b.Heading2 != nil:
		return b.Heading2.RichText
	case b.Heading3 != nil:
		return b.Heading3.RichText
	case b.Bullet != nil:
		return b.Bullet.RichText
	case b.Code != nil:
		return b.Code.RichText
	}
	return nil
}

// ChildBlocks returns nested children for kinds that can carry them.
func (b Block) ChildBlocks() []Block {
	switch {
	case b.Paragraph != nil:
		return b.Paragraph.Children
	case b.Heading1 != nil:
		return b.Heading1.Children
	case b.Heading2 != nil:
		return b.Heading2.Children
	case b.Heading3 != nil:
		return b.Heading3.Children
	case b.Bullet != nil:
		return b.Bullet.Children
	case b.Table != nil:
		return b.Table.Children
	}
	return nil
}

// PlainText concatenates run contents, dropping all annotation structure.
func PlainText(runs []TextRun) string {
	var out string
	for _, r := range runs {
		out += r.Text.Content
	}
	return out
}

// Length is the total character count of a rich-text collection. Characters
// are runes, not bytes: the page API limit is a character limit and much of
// the content is CJK.
func Length(runs []TextRun) int {
	n := 0
	for _, r := range runs {
		n += utf8.RuneCountInString(r.Text.Content)
	}
	return n
}
