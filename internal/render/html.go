package render

import (
	"fmt"
	"html"
	"strings"
)

// HTMLRenderer renders the supported subset as HTML. Every text run is
// escaped before it is wrapped in one of a fixed set of tags, so input
// markup never reaches the page.
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render parses text and formats it as HTML
func (r *HTMLRenderer) Render(text string) string {
	return r.Format(Parse(text))
}

// Format renders an already parsed Document
func (r *HTMLRenderer) Format(doc Document) string {
	var b strings.Builder
	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockHeading:
			fmt.Fprintf(&b, "<h%d>", block.Level)
			writeHTMLSpans(&b, block.Spans)
			fmt.Fprintf(&b, "</h%d>\n", block.Level)
		case BlockParagraph:
			b.WriteString("<p>")
			writeHTMLSpans(&b, block.Spans)
			b.WriteString("</p>\n")
		case BlockRule:
			b.WriteString("<hr>\n")
		case BlockList:
			writeHTMLList(&b, block.Items)
		case BlockTable:
			writeHTMLTable(&b, block.Table)
		}
	}
	return b.String()
}

func listTag(item ListItem) string {
	if item.Ordered {
		return "ol"
	}
	return "ul"
}

// openList writes the opening tag for a list starting with item. Ordered
// lists keep their first number.
func openList(item ListItem) string {
	if item.Ordered && item.Number != 1 {
		return fmt.Sprintf("<ol start=\"%d\">", item.Number)
	}
	return "<" + listTag(item) + ">"
}

// writeHTMLList nests items by depth; a deeper item opens a new list inside
// the preceding <li>. A change between ordered and unordered at the same
// depth closes the list and opens one of the other kind.
func writeHTMLList(b *strings.Builder, items []ListItem) {
	var open []string
	for i, item := range items {
		switch {
		case i == 0:
			open = append(open, listTag(item))
			fmt.Fprintf(b, "%s\n", openList(item))
		case item.Depth > items[i-1].Depth:
			open = append(open, listTag(item))
			fmt.Fprintf(b, "\n%s\n", openList(item))
		default:
			b.WriteString("</li>\n")
			for len(open)-1 > item.Depth {
				fmt.Fprintf(b, "</%s>\n</li>\n", open[len(open)-1])
				open = open[:len(open)-1]
			}
			if last := len(open) - 1; open[last] != listTag(item) {
				fmt.Fprintf(b, "</%s>\n%s\n", open[last], openList(item))
				open[last] = listTag(item)
			}
		}
		b.WriteString("<li>")
		writeHTMLSpans(b, item.Spans)
	}
	b.WriteString("</li>\n")
	for len(open) > 0 {
		fmt.Fprintf(b, "</%s>\n", open[len(open)-1])
		open = open[:len(open)-1]
		if len(open) > 0 {
			b.WriteString("</li>\n")
		}
	}
}

func alignAttr(align []Alignment, col int) string {
	if col >= len(align) {
		return ""
	}
	switch align[col] {
	case AlignLeft:
		return ` style="text-align:left"`
	case AlignCenter:
		return ` style="text-align:center"`
	case AlignRight:
		return ` style="text-align:right"`
	}
	return ""
}

func writeHTMLTable(b *strings.Builder, t *Table) {
	b.WriteString("<table>\n<thead>\n<tr>")
	for i, cell := range t.Header {
		fmt.Fprintf(b, "<th%s>", alignAttr(t.Align, i))
		writeHTMLSpans(b, cell)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n")
	if len(t.Rows) > 0 {
		b.WriteString("<tbody>\n")
		for _, row := range t.Rows {
			b.WriteString("<tr>")
			for i, cell := range row {
				fmt.Fprintf(b, "<td%s>", alignAttr(t.Align, i))
				writeHTMLSpans(b, cell)
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody>\n")
	}
	b.WriteString("</table>\n")
}

func writeHTMLSpans(b *strings.Builder, spans []Span) {
	for _, span := range spans {
		switch span.Kind {
		case SpanText:
			b.WriteString(html.EscapeString(span.Text))
		case SpanCode:
			b.WriteString("<code>")
			b.WriteString(html.EscapeString(span.Text))
			b.WriteString("</code>")
		case SpanStrong:
			b.WriteString("<strong>")
			writeHTMLSpans(b, span.Children)
			b.WriteString("</strong>")
		case SpanEmphasis:
			b.WriteString("<em>")
			writeHTMLSpans(b, span.Children)
			b.WriteString("</em>")
		}
	}
}
