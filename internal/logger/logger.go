package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Logger defines the logging interface used throughout the application
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level zerolog.Level)
	GetLevel() zerolog.Level
	EnableHTTPLogging()
	DisableHTTPLogging()
	IsHTTPLoggingEnabled() bool
}

// ZeroLogger adapts zerolog to the Logger interface. Arguments are
// alternating key/value pairs, the same convention slog uses.
type ZeroLogger struct {
	logger      zerolog.Logger
	level       atomic.Int32
	httpLogging atomic.Bool
}

// New creates a new ZeroLogger writing to stdout at info level
func New() *ZeroLogger {
	return NewWithLevel(zerolog.InfoLevel)
}

// NewWithLevel creates a new ZeroLogger writing to stdout at the given level
func NewWithLevel(level zerolog.Level) *ZeroLogger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a ZeroLogger writing JSON lines to w
func NewWithWriter(w io.Writer, level zerolog.Level) *ZeroLogger {
	zl := &ZeroLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
	zl.level.Store(int32(level))
	return zl
}

// NewConsole creates a human-readable logger for interactive use
func NewConsole(level zerolog.Level) *ZeroLogger {
	return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}, level)
}

// Nop returns a logger that discards everything
func Nop() *ZeroLogger {
	zl := &ZeroLogger{logger: zerolog.Nop()}
	zl.level.Store(int32(zerolog.Disabled))
	return zl
}

// ParseLevel converts a string log level to a zerolog.Level.
// Accepts trace, debug, info, warn/warning, error (case-insensitive).
// Returns zerolog.InfoLevel if the level is not recognized.
func ParseLevel(level string) zerolog.Level {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = "warn"
	}
	lvl, err := zerolog.ParseLevel(normalized)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *ZeroLogger) Debug(msg string, args ...any) {
	l.log(zerolog.DebugLevel, msg, args)
}

func (l *ZeroLogger) Info(msg string, args ...any) {
	l.log(zerolog.InfoLevel, msg, args)
}

func (l *ZeroLogger) Warn(msg string, args ...any) {
	l.log(zerolog.WarnLevel, msg, args)
}

func (l *ZeroLogger) Error(msg string, args ...any) {
	l.log(zerolog.ErrorLevel, msg, args)
}

func (l *ZeroLogger) log(level zerolog.Level, msg string, args []any) {
	if level < l.GetLevel() {
		return
	}
	ev := l.logger.WithLevel(level)
	if len(args) > 0 {
		ev = ev.Fields(normalizeArgs(args))
	}
	ev.Msg(msg)
}

// normalizeArgs makes sure keys are strings and pads a dangling key so
// zerolog never drops a pair.
func normalizeArgs(args []any) []interface{} {
	fields := make([]interface{}, 0, len(args)+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = "!BADKEY"
		}
		var value any
		if i+1 < len(args) {
			value = args[i+1]
		}
		if err, isErr := value.(error); isErr {
			value = err.Error()
		}
		fields = append(fields, key, value)
	}
	return fields
}

// SetLevel changes the logging level dynamically
func (l *ZeroLogger) SetLevel(level zerolog.Level) {
	l.level.Store(int32(level))
}

// GetLevel returns the current logging level
func (l *ZeroLogger) GetLevel() zerolog.Level {
	return zerolog.Level(l.level.Load())
}

// EnableHTTPLogging enables HTTP request logging
func (l *ZeroLogger) EnableHTTPLogging() {
	l.httpLogging.Store(true)
}

// DisableHTTPLogging disables HTTP request logging
func (l *ZeroLogger) DisableHTTPLogging() {
	l.httpLogging.Store(false)
}

// IsHTTPLoggingEnabled returns whether HTTP logging is enabled
func (l *ZeroLogger) IsHTTPLoggingEnabled() bool {
	return l.httpLogging.Load()
}

var _ Logger = (*ZeroLogger)(nil)
