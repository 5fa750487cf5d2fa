package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// Console writes translated messages to stdout, warnings and errors to
// stderr.
type Console struct {
	level     Level
	component string
	color     bool
	out, err  io.Writer
}

// NewConsole returns a console logger. Colors are enabled when stdout is a
// terminal.
func NewConsole(level Level) *Console {
	return &Console{
		level: level,
		color: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		out:   os.Stdout,
		err:   os.Stderr,
	}
}

// NewWriter returns an uncolored console logger writing to out and errOut.
func NewWriter(level Level, out, errOut io.Writer) *Console {
	return &Console{level: level, out: out, err: errOut}
}

// Debug logs a debug message.
func (l *Console) Debug(msg string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.log(LevelDebug, msg, args...)
	}
}

// Info logs an informational message.
func (l *Console) Info(msg string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.log(LevelInfo, msg, args...)
	}
}

// Warn logs a warning.
func (l *Console) Warn(msg string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.log(LevelWarn, msg, args...)
	}
}

// Error logs an error.
func (l *Console) Error(msg string, args ...interface{}) {
	if l.level <= LevelError {
		l.log(LevelError, msg, args...)
	}
}

// WithComponent returns a copy of l tagged with component.
func (l *Console) WithComponent(component string) Logger {
	c := *l
	c.component = component
	return &c
}

func (l *Console) log(level Level, msg string, args ...interface{}) {
	line := l10n.F(msg, args...)
	if l.component != "" {
		if l.color {
			line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, line)
		} else {
			line = fmt.Sprintf("[%s] %s", l.component, line)
		}
	}

	if l.color {
		switch level {
		case LevelDebug:
			line = colorGray + line + colorReset
		case LevelWarn:
			line = colorYellow + line + colorReset
		case LevelError:
			line = colorRed + line + colorReset
		}
	}

	if level >= LevelWarn {
		fmt.Fprintln(l.err, line)
	} else {
		fmt.Fprintln(l.out, line)
	}
}
