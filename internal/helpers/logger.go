package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is a log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	debugMu      sync.RWMutex
	debugEnabled = envEnabled("DEBUG")

	outputMu sync.Mutex
	output   io.Writer = os.Stderr
)

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  InfoColor,
	LevelWarn:  WarningColor,
	LevelError: ErrorColor,
}

// Logger writes component-tagged log lines to stderr
type Logger struct {
	component string
}

// NewLogger creates a logger for a component such as "webui" or "gemini"
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// SetDebug enables or disables debug lines for every logger
func SetDebug(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
}

// IsDebugEnabled reports whether debug lines are written
func IsDebugEnabled() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugEnabled
}

// SetOutput redirects log output, returning the previous writer
func SetOutput(w io.Writer) io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()
	prev := output
	output = w
	return prev
}

func (l *Logger) Debug(format string, args ...any) {
	if !IsDebugEnabled() {
		return
	}
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil {
		return
	}
	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	message := fmt.Sprintf(format, args...)
	tag := levelColors[level].Sprint(string(level))

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintf(output, "[%s] [%s] %s: %s\n", timestamp, l.component, tag, message)
}

func envEnabled(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	return v == "1" || strings.EqualFold(v, "true")
}
