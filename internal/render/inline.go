package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseInline splits s into text, code, strong and emphasis spans.
// Markers without a matching close are kept as literal text.
func parseInline(s string) []Span {
	var spans []Span
	var text strings.Builder

	flushText := func() {
		if text.Len() > 0 {
			spans = appendText(spans, text.String())
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '`':
			if end := strings.IndexByte(s[i+1:], '`'); end > 0 {
				flushText()
				spans = append(spans, Span{Kind: SpanCode, Text: s[i+1 : i+1+end]})
				i += end + 2
				continue
			}

		case (c == '*' || c == '_') && strings.HasPrefix(s[i:], string([]byte{c, c, c})):
			// ***text*** is emphasis inside strong.
			delim := s[i : i+3]
			if end, ok := findDouble(s, i+3, delim); ok && canOpen(s, i, c) && canClose(s, end+3, c) {
				flushText()
				spans = append(spans, Span{Kind: SpanStrong, Children: []Span{
					{Kind: SpanEmphasis, Children: parseInline(s[i+3 : end])},
				}})
				i = end + 3
				continue
			}
			fallthrough

		case (c == '*' || c == '_') && strings.HasPrefix(s[i:], string([]byte{c, c})):
			delim := s[i : i+2]
			if end, ok := findDouble(s, i+2, delim); ok && canOpen(s, i, c) && canClose(s, end+2, c) {
				flushText()
				spans = append(spans, Span{Kind: SpanStrong, Children: parseInline(s[i+2 : end])})
				i = end + 2
				continue
			}
			text.WriteString(delim)
			i += 2
			continue

		case c == '*' || c == '_':
			if end, ok := findSingle(s, i+1, c); ok && canOpen(s, i, c) && canClose(s, end+1, c) {
				flushText()
				spans = append(spans, Span{Kind: SpanEmphasis, Children: parseInline(s[i+1 : end])})
				i = end + 1
				continue
			}
		}
		text.WriteByte(c)
		i++
	}
	flushText()
	return spans
}

// findDouble finds the closing delimiter for a strong span opened before start.
func findDouble(s string, start int, delim string) (int, bool) {
	end := strings.Index(s[start:], delim)
	if end <= 0 {
		return 0, false
	}
	inner := s[start : start+end]
	if strings.TrimSpace(inner) != inner {
		return 0, false
	}
	return start + end, true
}

// findSingle finds a lone closing marker, skipping doubled markers and code spans.
func findSingle(s string, start int, marker byte) (int, bool) {
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '`':
			if end := strings.IndexByte(s[i+1:], '`'); end >= 0 {
				i += end + 1
			}
		case marker:
			if i+1 < len(s) && s[i+1] == marker {
				i++
				continue
			}
			inner := s[start:i]
			if inner == "" || strings.TrimSpace(inner) != inner {
				return 0, false
			}
			return i, true
		}
	}
	return 0, false
}

// canOpen rejects underscores inside words such as snake_case.
func canOpen(s string, i int, marker byte) bool {
	if marker != '_' || i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func canClose(s string, after int, marker byte) bool {
	if marker != '_' || after >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[after:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// appendText adds text to spans, merging with a trailing text span.
func appendText(spans []Span, text string) []Span {
	if n := len(spans); n > 0 && spans[n-1].Kind == SpanText {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Kind: SpanText, Text: text})
}
