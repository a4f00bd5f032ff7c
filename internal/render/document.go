// Package render turns the markdown-like text returned by the analysis
// collaborator into display output.
//
// Parse produces a Document of blocks and inline spans for a fixed subset
// (headings, ordered and unordered lists, emphasis and bold, inline code,
// pipe tables, horizontal rules, paragraphs). Renderers format a Document
// for a particular surface. Nothing outside the subset is interpreted.
package render

import "strings"

// Renderer formats text for display
type Renderer interface {
	Render(text string) string
}

// BlockKind identifies a block-level construct
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockTable
	BlockRule
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockList:
		return "list"
	case BlockTable:
		return "table"
	case BlockRule:
		return "rule"
	}
	return "unknown"
}

// SpanKind identifies an inline construct
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanStrong
	SpanEmphasis
	SpanCode
)

// Span is an inline run. Text holds the content of text and code spans;
// strong and emphasis spans carry Children.
type Span struct {
	Kind     SpanKind
	Text     string
	Children []Span
}

// Alignment is a table column alignment taken from the separator row
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ListItem is one entry of a list block
type ListItem struct {
	Depth   int
	Ordered bool
	Number  int
	Spans   []Span
}

// Table is a pipe-delimited table. Every row has len(Header) cells.
type Table struct {
	Header [][]Span
	Align  []Alignment
	Rows   [][][]Span
}

// Block is a block-level element of a Document
type Block struct {
	Kind BlockKind
	// Level is the heading level, 1 to 6.
	Level int
	Spans []Span
	Items []ListItem
	Table *Table
}

// Document is the parsed form of a text block
type Document struct {
	Blocks []Block
}

// Empty reports whether the document has no blocks
func (d Document) Empty() bool {
	return len(d.Blocks) == 0
}

// PlainText concatenates the text of spans without any formatting
func PlainText(spans []Span) string {
	var b strings.Builder
	writePlain(&b, spans)
	return b.String()
}

func writePlain(b *strings.Builder, spans []Span) {
	for _, span := range spans {
		switch span.Kind {
		case SpanText, SpanCode:
			b.WriteString(span.Text)
		default:
			writePlain(b, span.Children)
		}
	}
}
