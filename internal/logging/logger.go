// Package logging is the leveled console logger of the agent: one line per
// event, "[15:04] LEVEL: message k=v", with traffic-light level colors.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Level is a log severity.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled lines to an io.Writer. It satisfies ptl.Logger.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	colors map[Level]*color.Color
	now    func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithLevel sets the minimum level written.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithColor forces colors on or off.
func WithColor(enabled bool) Option {
	return func(l *Logger) {
		for _, c := range l.colors {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New creates a Logger. Colors default to on only when out is a terminal.
func New(out io.Writer, opts ...Option) *Logger {
	logger := &Logger{
		out:   out,
		level: LevelInfo,
		now:   time.Now,
		colors: map[Level]*color.Color{
			LevelDebug:    color.New(color.FgWhite),
			LevelInfo:     color.New(color.FgGreen),
			LevelWarn:     color.New(color.FgYellow),
			LevelError:    color.New(color.FgRed),
			LevelCritical: color.New(color.FgRed, color.Bold),
		},
	}

	WithColor(IsTerminal(out))(logger)

	for _, opt := range opts {
		opt(logger)
	}

	return logger
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}

// Debug implements ptl.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log(LevelDebug, msg, fields)
}

// Info implements ptl.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log(LevelInfo, msg, fields)
}

// Warn implements ptl.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log(LevelWarn, msg, fields)
}

// Error implements ptl.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log(LevelError, msg, fields)
}

// Critical logs a condition that ends the run.
func (l *Logger) Critical(msg string, fields map[string]interface{}) {
	l.log(LevelCritical, msg, fields)
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted message at warning level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Criticalf logs a formatted message at critical level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.log(LevelCritical, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) log(level Level, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	levelName := l.colors[level].Sprint(level.String())
	_, _ = fmt.Fprintf(l.out, "[%s] %s: %s%s\n", l.now().Format("15:04"), levelName, msg, formatFields(fields))
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var b strings.Builder

	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(toString(fields[key]))
	}

	return b.String()
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return strings.TrimSpace(strings.ReplaceAll(fmt.Sprintf("%v", t), "\n", " "))
	}
}
