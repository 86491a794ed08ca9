package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var once sync.Once

// Options configures the global logger.
type Options struct {
	// FilePath, when set, receives a JSON copy of every entry.
	FilePath string
	// Level is a zerolog level name; unknown or empty means info.
	Level string
	// Format is "json" (default) or "console" for human-readable stdout.
	Format string
}

// InitLogging configures the global zerolog logger. Only the first call has
// any effect.
func InitLogging(opts Options) {
	once.Do(func() {
		writers := []io.Writer{stdoutWriter(opts.Format)}

		if opts.FilePath != "" {
			file, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				// The logger is not ready yet.
				os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		globalLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(ParseLevel(opts.Level)).
			With().Timestamp().Logger()
		log.Logger = globalLogger
	})
}

func stdoutWriter(format string) io.Writer {
	if strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithLogger returns a new context containing the logger with additional fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	// Fields already attached to ctx are kept.
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the zerolog logger from the context, falling back to the global logger.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	// zerolog.Ctx returns a disabled logger if none is in context
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

// DebugLog logs a debug level message.
func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

// InfoLog logs an info level message.
func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

// WarnLog logs a warning level message.
func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs an error level message. The first error among args is also
// attached as the structured "error" field.
func ErrorLog(ctx context.Context, msg string, args ...interface{}) {
	ev := getLogger(ctx).Error()
	for _, a := range args {
		if err, ok := a.(error); ok {
			ev = ev.Err(err)
			break
		}
	}
	ev.Msgf(msg, args...)
}
