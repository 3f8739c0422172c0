package log

import (
	"log/slog"
	"sync/atomic"
)

var root atomic.Value

// Until a handler is configured by the command, everything is discarded.
// 在命令配置处理器之前，所有日志都会被丢弃。
func init() {
	root.Store(&logger{slog.New(discardHandler{})})
}

// SetDefault replaces the root logger. Loggers created by this package also
// become the slog default.
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger.
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a child of the root logger carrying the given attributes.
func New(ctx ...interface{}) Logger {
	return Root().With(ctx...)
}

// The package level helpers call Write directly so the call depth matches the
// logger methods.

// Trace logs at the trace level on the root logger.
//
//	log.Trace("Entered account cache section", "op", op)
func Trace(msg string, ctx ...interface{}) { Root().Write(LevelTrace, msg, ctx...) }

// Debug logs at the debug level on the root logger.
func Debug(msg string, ctx ...interface{}) { Root().Write(LevelDebug, msg, ctx...) }

// Info logs at the info level on the root logger.
func Info(msg string, ctx ...interface{}) { Root().Write(LevelInfo, msg, ctx...) }

// Warn logs at the warn level on the root logger.
func Warn(msg string, ctx ...interface{}) { Root().Write(LevelWarn, msg, ctx...) }

// Error logs at the error level on the root logger.
func Error(msg string, ctx ...interface{}) { Root().Write(LevelError, msg, ctx...) }
