package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log levels supported by the logger
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the name of the log file created inside the log directory.
const FileName = "courtside.log"

// Logger provides structured logging with persistent context attributes.
// It is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	out    *output
}

// output is shared by a root logger and all of its children so that
// closing any of them closes the file exactly once.
type output struct {
	file *rotatingFile
}

// NewLogger creates a Logger that writes JSON lines to {dir}/courtside.log.
// If dir is empty, logs are written to stderr.
//
// Unrecognized levels fall back to INFO.
func NewLogger(dir string, level string, opts ...Option) (*Logger, error) {
	if dir == "" {
		return newLogger(os.Stderr, nil, level), nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	file, err := openRotatingFile(filepath.Join(dir, FileName), int64(o.maxSizeMB)*1024*1024, o.maxBackups)
	if err != nil {
		return nil, err
	}
	return newLogger(file, file, level), nil
}

// NewWriterLogger creates a Logger that writes JSON lines to w.
// The caller owns w; Close does not close it.
func NewWriterLogger(w io.Writer, level string) *Logger {
	return newLogger(w, nil, level)
}

func newLogger(w io.Writer, file *rotatingFile, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})
	return &Logger{
		logger: slog.New(handler),
		out:    &output{file: file},
	}
}

func slogLevel(level string) slog.Level {
	switch ParseLevel(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithScope returns a child Logger tagged with a subscription scope.
func (l *Logger) WithScope(scope string) *Logger {
	return l.With("scope", scope)
}

// WithTopic returns a child Logger tagged with a backend topic.
func (l *Logger) WithTopic(topic string) *Logger {
	return l.With("topic", topic)
}

// WithSubscription returns a child Logger tagged with a subscription's
// id, scope and topic.
func (l *Logger) WithSubscription(id, scope, topic string) *Logger {
	return l.With("subscription_id", id, "scope", scope, "topic", topic)
}

// WithComponent returns a child Logger tagged with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// With returns a child Logger with arbitrary key-value attributes.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(args...), out: l.out}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// Slog exposes the underlying slog.Logger for libraries that want one.
func (l *Logger) Slog() *slog.Logger { return l.logger }

// Close syncs and closes the log file. Loggers writing to stderr or a
// caller-owned writer are unaffected.
func (l *Logger) Close() error {
	if l.out.file == nil {
		return nil
	}
	return l.out.file.Close()
}

// NopLogger returns a Logger that discards all output.
func NopLogger() *Logger {
	return newLogger(io.Discard, nil, LevelError)
}

// ParseLevel normalizes a level string to one of the level constants.
// Returns LevelInfo if the level string is not recognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
