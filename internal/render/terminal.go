package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// TerminalRenderer renders the supported subset with ANSI styles
type TerminalRenderer struct {
	heading  *color.Color
	strong   *color.Color
	emphasis *color.Color
	code     *color.Color
	rule     *color.Color
	width    int
}

// NewTerminalRenderer creates a terminal renderer. When colored is false
// the output is plain text with the same layout.
func NewTerminalRenderer(colored bool) *TerminalRenderer {
	r := &TerminalRenderer{
		heading:  color.New(color.FgMagenta, color.Bold),
		strong:   color.New(color.Bold),
		emphasis: color.New(color.Italic),
		code:     color.New(color.FgCyan),
		rule:     color.New(color.FgHiBlack),
		width:    80,
	}
	for _, c := range []*color.Color{r.heading, r.strong, r.emphasis, r.code, r.rule} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render parses text and formats it for a terminal. Control characters
// other than line breaks and tab are dropped first so the input cannot emit
// its own escape sequences.
func (r *TerminalRenderer) Render(text string) string {
	return r.Format(Parse(stripControl(text)))
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return -1
		}
		return r
	}, text)
}

// Format renders an already parsed Document
func (r *TerminalRenderer) Format(doc Document) string {
	var parts []string
	for _, block := range doc.Blocks {
		switch block.Kind {
		case BlockHeading:
			title := r.spans(block.Spans)
			if block.Level <= 2 {
				underline := strings.Repeat("=", runewidth.StringWidth(PlainText(block.Spans)))
				if block.Level == 2 {
					underline = strings.Repeat("-", runewidth.StringWidth(PlainText(block.Spans)))
				}
				parts = append(parts, r.heading.Sprint(title)+"\n"+r.heading.Sprint(underline))
			} else {
				parts = append(parts, r.heading.Sprint(title))
			}
		case BlockParagraph:
			parts = append(parts, r.spans(block.Spans))
		case BlockRule:
			parts = append(parts, r.rule.Sprint(strings.Repeat("─", r.width)))
		case BlockList:
			parts = append(parts, r.list(block.Items))
		case BlockTable:
			parts = append(parts, r.table(block.Table))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func (r *TerminalRenderer) list(items []ListItem) string {
	lines := make([]string, len(items))
	for i, item := range items {
		marker := "•"
		if item.Ordered {
			marker = fmt.Sprintf("%d.", item.Number)
		}
		lines[i] = strings.Repeat("  ", item.Depth) + marker + " " + r.spans(item.Spans)
	}
	return strings.Join(lines, "\n")
}

func (r *TerminalRenderer) table(t *Table) string {
	widths := make([]int, len(t.Header))
	measure := func(row [][]Span) {
		for i, cell := range row {
			if n := runewidth.StringWidth(PlainText(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}

	formatRow := func(row [][]Span, style *color.Color) string {
		cells := make([]string, len(row))
		for i, cell := range row {
			text := r.spans(cell)
			if style != nil {
				text = style.Sprint(PlainText(cell))
			}
			pad := widths[i] - runewidth.StringWidth(PlainText(cell))
			cells[i] = " " + alignCell(text, pad, alignmentAt(t.Align, i)) + " "
		}
		return "│" + strings.Join(cells, "│") + "│"
	}

	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w+2)
	}

	lines := []string{formatRow(t.Header, r.strong), "├" + strings.Join(seps, "┼") + "┤"}
	for _, row := range t.Rows {
		lines = append(lines, formatRow(row, nil))
	}
	return strings.Join(lines, "\n")
}

func alignmentAt(align []Alignment, col int) Alignment {
	if col < len(align) {
		return align[col]
	}
	return AlignNone
}

func alignCell(text string, pad int, align Alignment) string {
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + text
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	}
	return text + strings.Repeat(" ", pad)
}

func (r *TerminalRenderer) spans(spans []Span) string {
	var b strings.Builder
	for _, span := range spans {
		switch span.Kind {
		case SpanText:
			b.WriteString(span.Text)
		case SpanCode:
			b.WriteString(r.code.Sprint(span.Text))
		case SpanStrong:
			b.WriteString(r.strong.Sprint(r.spans(span.Children)))
		case SpanEmphasis:
			b.WriteString(r.emphasis.Sprint(r.spans(span.Children)))
		}
	}
	return b.String()
}
