package log

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"time"
)

const errorKey = "LOG_ERROR"

const (
	levelMaxVerbosity slog.Level = math.MinInt
	LevelTrace        slog.Level = -8
	LevelDebug                   = slog.LevelDebug
	LevelInfo                    = slog.LevelInfo
	LevelWarn                    = slog.LevelWarn
	LevelError                   = slog.LevelError
	LevelCrit         slog.Level = 12
)

// legacyLevels maps the numeric --verbosity values (0=crit ... 5=trace) to
// slog levels.
var legacyLevels = []slog.Level{LevelCrit, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// levelNames holds the padded terminal name and the lower case machine name
// of every level.
var levelNames = map[slog.Level][2]string{
	LevelTrace: {"TRACE", "trace"},
	LevelDebug: {"DEBUG", "debug"},
	LevelInfo:  {"INFO ", "info"},
	LevelWarn:  {"WARN ", "warn"},
	LevelError: {"ERROR", "error"},
	LevelCrit:  {"CRIT ", "crit"},
}

// FromLegacyLevel converts a numeric verbosity into a slog level. Values above
// the trace verbosity saturate at trace, negative ones at crit.
// FromLegacyLevel 将命令行使用的数字详细级别转换为 slog 日志级别。
func FromLegacyLevel(lvl int) slog.Level {
	switch {
	case lvl < 0:
		return LevelCrit
	case lvl >= len(legacyLevels):
		return LevelTrace
	}
	return legacyLevels[lvl]
}

// LevelAlignedString returns the five character terminal name of a level.
func LevelAlignedString(l slog.Level) string {
	if names, ok := levelNames[l]; ok {
		return names[0]
	}
	return "unknown level"
}

// LevelString returns the lower case name of a level.
func LevelString(l slog.Level) string {
	if names, ok := levelNames[l]; ok {
		return names[1]
	}
	return "unknown"
}

// A Logger writes key/value pairs to a Handler.
type Logger interface {
	// With returns a logger carrying the given attributes on every record.
	With(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})

	// Write logs a message at the specified level.
	Write(level slog.Level, msg string, attrs ...any)
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger writing to the given handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

// Write emits a record at the given level. Every exported logging path reaches
// it at the same call depth, so the recorded PC is the caller's call site.
func (l *logger) Write(level slog.Level, msg string, attrs ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	if len(attrs)%2 != 0 {
		attrs = append(attrs, nil, errorKey, "Normalized odd number of arguments by adding nil")
	}
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(attrs...)
	l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) With(ctx ...interface{}) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.Write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{}) { l.Write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{}) { l.Write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.Write(LevelError, msg, ctx...) }
