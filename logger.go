package framecoder

import "github.com/deepteams/framecoder/internal/logger"

// Logger is the logging port of the encoder and decoder. Messages are
// lexicon keys in fmt syntax.
type Logger = logger.Logger

// LogLevel is the severity of a log message.
type LogLevel = logger.Level

// Log levels.
const (
	LevelDebug = logger.LevelDebug
	LevelInfo  = logger.LevelInfo
	LevelWarn  = logger.LevelWarn
	LevelError = logger.LevelError
	LevelQuiet = logger.LevelQuiet
)

// ParseLogLevel parses a level name; unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel { return logger.ParseLevel(s) }

// NewConsoleLogger returns a Logger printing messages at or above level,
// translated to the user's language.
func NewConsoleLogger(level LogLevel) Logger { return logger.NewConsole(level) }

func orNoop(l Logger) Logger {
	if l == nil {
		return logger.NewNoop()
	}
	return l
}
