package log

import (
	"github.com/kataras/golog"
)

// GologLogger implements Logger on top of kataras/golog, the terminal logger
// `kisseru run --color` and `kisseru package --color` switch to in place of
// DefaultLogger. Where DefaultLogger's output is a flat log.Printf line,
// golog colors the level tag, which is what makes a long `kisseru run`
// against a wide graph (tracer Debug lines interleaved with backend Info/Warn
// lines) scannable in a terminal instead of a wall of identical text.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps an already-configured golog.Logger, for callers that
// want golog's child-logger or custom-handler features. Most callers want
// NewColorLogger instead.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{
		logger: logger,
		level:  LogLevelInfo, // default level
	}
}

// NewColorLogger creates a GologLogger prefixed the same way
// NewDefaultLogger prefixes the stdlib one, so switching `--color` on and off
// changes only the formatting, not the `[kisseru] ` tag operators grep for.
func NewColorLogger(level LogLevel) *GologLogger {
	glogger := golog.New()
	glogger.SetPrefix("[kisseru] ")
	logger := NewGologLogger(glogger)
	logger.SetLevel(level)
	return logger
}

// Debug logs debug messages
func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		args := append([]any{format}, v...)
		l.logger.Debug(args...)
	}
}

// Info logs informational messages
func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		args := append([]any{format}, v...)
		l.logger.Info(args...)
	}
}

// Warn logs warning messages
func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		args := append([]any{format}, v...)
		l.logger.Warn(args...)
	}
}

// Error logs error messages
func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		args := append([]any{format}, v...)
		l.logger.Error(args...)
	}
}

// SetLevel sets the log level
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level

	// Convert to golog level string
	gologLevel := "info"
	switch level {
	case LogLevelDebug:
		gologLevel = "debug"
	case LogLevelInfo:
		gologLevel = "info"
	case LogLevelWarn:
		gologLevel = "warn"
	case LogLevelError:
		gologLevel = "error"
	case LogLevelNone:
		gologLevel = "disable"
	}

	l.logger.SetLevel(gologLevel)
}

// GetLevel returns the current log level
func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}