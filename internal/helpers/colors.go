package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// SuccessColor for successful operations
	SuccessColor = color.New(color.FgGreen, color.Bold)

	// ErrorColor for error messages
	ErrorColor = color.New(color.FgRed, color.Bold)

	// WarningColor for warning messages
	WarningColor = color.New(color.FgYellow, color.Bold)

	// InfoColor for informational messages
	InfoColor = color.New(color.FgCyan, color.Bold)

	// TitleColor for titles and headers
	TitleColor = color.New(color.FgMagenta, color.Bold)
)

var (
	consoleMu  sync.Mutex
	consoleOut io.Writer = color.Output
)

// SetConsoleOutput redirects the Print* helpers, returning the previous writer
func SetConsoleOutput(w io.Writer) io.Writer {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	prev := consoleOut
	consoleOut = w
	return prev
}

func printLine(c *color.Color, prefix, format string, args ...any) {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	c.Fprintf(consoleOut, prefix+format+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	printLine(SuccessColor, "✅ ", format, args...)
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	printLine(ErrorColor, "❌ ", format, args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	printLine(WarningColor, "⚠️  ", format, args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	printLine(InfoColor, "ℹ️  ", format, args...)
}

// PrintTitle prints a title
func PrintTitle(format string, args ...any) {
	printLine(TitleColor, "🎯 ", format, args...)
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	consoleMu.Lock()
	defer consoleMu.Unlock()
	fmt.Fprintln(consoleOut, strings.Repeat("─", 80))
}

// IsTerminal checks if output is going to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
