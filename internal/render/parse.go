package render

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)(?:[ \t]+#+)?[ \t]*$`)
	unorderedRe = regexp.MustCompile(`^([ \t]*)[-*+][ \t]+(.*)$`)
	orderedRe   = regexp.MustCompile(`^([ \t]*)(\d{1,9})[.)][ \t]+(.*)$`)
	separatorRe = regexp.MustCompile(`^:?-+:?$`)
)

// Parse converts text into a Document. Empty or whitespace-only input
// yields an empty Document.
func Parse(text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	p := &parser{lines: lines}
	p.run()
	return Document{Blocks: p.blocks}
}

type parser struct {
	lines  []string
	pos    int
	blocks []Block

	paragraph []string
	list      *Block
}

func (p *parser) run() {
	for p.pos < len(p.lines) {
		line := strings.TrimRight(p.lines[p.pos], " \t")

		switch {
		case strings.TrimSpace(line) == "":
			p.flushParagraph()
			if !p.listResumes() {
				p.flushList()
			}
			p.pos++

		case isRule(line):
			p.flush()
			p.blocks = append(p.blocks, Block{Kind: BlockRule})
			p.pos++

		case headingRe.MatchString(line):
			p.flush()
			m := headingRe.FindStringSubmatch(line)
			p.blocks = append(p.blocks, Block{
				Kind:  BlockHeading,
				Level: len(m[1]),
				Spans: parseInline(m[2]),
			})
			p.pos++

		case p.atTable():
			p.flush()
			p.parseTable()

		default:
			if item, ok := parseListItem(line); ok {
				p.addListItem(item)
				p.pos++
				continue
			}
			if p.list != nil && isIndented(line) {
				// Continuation of the previous list item.
				last := &p.list.Items[len(p.list.Items)-1]
				last.Spans = appendText(last.Spans, " "+strings.TrimSpace(line))
				p.pos++
				continue
			}
			p.flushList()
			p.paragraph = append(p.paragraph, strings.TrimSpace(line))
			p.pos++
		}
	}
	p.flush()
}

func (p *parser) flush() {
	p.flushParagraph()
	p.flushList()
}

func (p *parser) flushParagraph() {
	if len(p.paragraph) == 0 {
		return
	}
	p.blocks = append(p.blocks, Block{
		Kind:  BlockParagraph,
		Spans: parseInline(strings.Join(p.paragraph, " ")),
	})
	p.paragraph = nil
}

func (p *parser) flushList() {
	if p.list == nil {
		return
	}
	p.blocks = append(p.blocks, *p.list)
	p.list = nil
}

// listResumes reports whether the next non-blank line continues the open
// list, so loose lists separated by blank lines stay one block.
func (p *parser) listResumes() bool {
	if p.list == nil {
		return false
	}
	for i := p.pos + 1; i < len(p.lines); i++ {
		line := strings.TrimRight(p.lines[i], " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		item, ok := parseListItem(line)
		if !ok {
			return false
		}
		return item.Depth > 0 || item.Ordered == p.list.Items[0].Ordered
	}
	return false
}

func (p *parser) addListItem(item ListItem) {
	p.flushParagraph()
	if p.list != nil && item.Depth == 0 && p.list.Items[0].Ordered != item.Ordered {
		p.flushList()
	}
	if p.list == nil {
		// A list always starts at depth zero.
		item.Depth = 0
		p.list = &Block{Kind: BlockList}
	}
	prev := p.list.Items
	if n := len(prev); n > 0 && item.Depth > prev[n-1].Depth+1 {
		item.Depth = prev[n-1].Depth + 1
	}
	p.list.Items = append(p.list.Items, item)
}

func parseListItem(line string) (ListItem, bool) {
	if m := unorderedRe.FindStringSubmatch(line); m != nil {
		return ListItem{Depth: indentDepth(m[1]), Spans: parseInline(m[2])}, true
	}
	if m := orderedRe.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return ListItem{Depth: indentDepth(m[1]), Ordered: true, Number: n, Spans: parseInline(m[3])}, true
	}
	return ListItem{}, false
}

// indentDepth counts two spaces or one tab per nesting level.
func indentDepth(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 2
		} else {
			width++
		}
	}
	return width / 2
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func isRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	marker := trimmed[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

func (p *parser) atTable() bool {
	if p.pos+1 >= len(p.lines) {
		return false
	}
	header := p.lines[p.pos]
	if !strings.Contains(header, "|") {
		return false
	}
	sep, ok := parseSeparator(p.lines[p.pos+1])
	return ok && len(sep) == len(splitRow(header))
}

func (p *parser) parseTable() {
	header := splitRow(p.lines[p.pos])
	align, _ := parseSeparator(p.lines[p.pos+1])
	p.pos += 2

	table := &Table{Align: align}
	for _, cell := range header {
		table.Header = append(table.Header, parseInline(cell))
	}

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || !strings.Contains(line, "|") {
			break
		}
		cells := splitRow(line)
		row := make([][]Span, len(header))
		for i := range row {
			if i < len(cells) {
				row[i] = parseInline(cells[i])
			}
		}
		table.Rows = append(table.Rows, row)
		p.pos++
	}

	p.blocks = append(p.blocks, Block{Kind: BlockTable, Table: table})
}

func parseSeparator(line string) ([]Alignment, bool) {
	if !strings.Contains(line, "-") {
		return nil, false
	}
	cells := splitRow(line)
	if len(cells) == 0 {
		return nil, false
	}
	align := make([]Alignment, len(cells))
	for i, cell := range cells {
		cell = strings.ReplaceAll(cell, " ", "")
		if !separatorRe.MatchString(cell) {
			return nil, false
		}
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		switch {
		case left && right:
			align[i] = AlignCenter
		case right:
			align[i] = AlignRight
		case left:
			align[i] = AlignLeft
		}
	}
	return align, true
}

// splitRow splits a pipe-delimited row. Outer pipes are optional and
// `\|` is a literal pipe inside a cell.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = strings.TrimSuffix(line, "|")
	}

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '|' {
			cell.WriteByte('|')
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
			continue
		}
		cell.WriteByte(c)
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}
