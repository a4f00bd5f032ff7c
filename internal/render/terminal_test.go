package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalRenderPlain(t *testing.T) {
	r := NewTerminalRenderer(false)

	assert.Equal(t, "", r.Render(""))
	assert.Equal(t, "bold\n", r.Render("**bold**"))
	assert.Equal(t, "Title\n=====\n\n• item\n", r.Render("# Title\n- item"))
	assert.Equal(t, "Scope\n-----\n\n1. one\n  • sub\n", r.Render("## Scope\n1. one\n  - sub"))
	assert.Equal(t, "Deep\n", r.Render("### Deep"))
	assert.Equal(t, "1. a\n2. b\n", r.Render("1. a\n\n2. b"))
}

func TestTerminalRenderTable(t *testing.T) {
	r := NewTerminalRenderer(false)
	got := r.Render("| ID | Requirement |\n|---|---:|\n| R1 | Login |")

	want := "│ ID │ Requirement │\n" +
		"├────┼─────────────┤\n" +
		"│ R1 │       Login │\n"
	assert.Equal(t, want, got)
}

func TestTerminalRenderColored(t *testing.T) {
	r := NewTerminalRenderer(true)
	got := r.Render("**bold**")

	assert.Contains(t, got, "\x1b[1m")
	assert.Contains(t, got, "bold")
	assert.Equal(t, got, r.Render("**bold**"))
}

func TestTerminalRenderStripsControlCharacters(t *testing.T) {
	r := NewTerminalRenderer(false)
	assert.Equal(t, "[31mred\n", r.Render("\x1b[31mred"))
}
