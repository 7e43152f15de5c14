package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	perrors "github.com/YuminosukeSato/preflearn/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel))
)

// SetupLogger configures the process-wide logger to write JSON lines to w at the given level.
// Library warnings raised through pkg/errors.Warn are routed to the same logger.
func SetupLogger(loglevel string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	zl := zerolog.New(w).With().Timestamp().Logger().Level(toZerologLevel(ToLogLevel(loglevel)))
	SetLogger(NewZerologLogger(zl))
}

// ToLogLevel converts a textual level. It panics on unknown input.
func ToLogLevel(level string) Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(err.Error())
	}
	return l
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error").
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level :%s", level)
	}
}

// GetLogger returns the process-wide logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()

	perrors.SetZerologWarnFunc(func(w error) {
		l.Warn(w.Error(), ErrorTypeKey, fmt.Sprintf("%T", w))
	})
}

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Nop returns a logger that discards everything.
func Nop() Logger { return NewZerologLogger(zerolog.Nop()) }

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) {
	emit(z.logger.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) {
	emit(z.logger.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) {
	emit(z.logger.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) {
	emit(z.logger.Error(), msg, fields)
}

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ctx = ctx.Str(key, v.Error())
		case string:
			ctx = ctx.Str(key, v)
		default:
			ctx = ctx.Interface(key, v)
		}
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.logger.GetLevel() <= toZerologLevel(level)
}

func emit(event *zerolog.Event, msg string, fields []any) {
	if event == nil {
		return
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			event = addError(event, ErrAttrKey, err)
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			event = addError(event, key, v)
		case zerolog.LogObjectMarshaler:
			event = event.Object(key, v)
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

func addError(event *zerolog.Event, key string, err error) *zerolog.Event {
	event = event.Str(key, err.Error())
	if st := extractStacktrace(err); st != "" {
		event = event.Str(StacktraceAttrKey, st)
	}
	return event
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
