package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime"
	"sync"
	"time"
)

// discardHandler drops every record. It is the root handler until the command
// installs a real one.
type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h discardHandler) WithGroup(string) slog.Handler { return h }

// TerminalHandler formats records for human readability on a terminal:
//
//	[LEVEL] [TIME] SOURCE MESSAGE key=value key=value ...
//
// Example:
//
//	DEBUG[05-16|20:58:45.123] accountcache/cache.go:98 Evicted least recently used account id=2 incoming=4
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	useColor bool
	attrs    []slog.Attr

	// fieldPadding remembers the widest value printed per key, so that
	// consecutive lines line up.
	fieldPadding map[string]int

	buf []byte
}

// NewTerminalHandler returns a terminal handler passing records of every
// level. Level filtering is left to the wrapping GlogHandler.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:           wr,
		useColor:     useColor,
		fieldPadding: make(map[string]int),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.format(h.buf, r, h.useColor)
	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

// source renders the file:line of the record's call site.
func (h *TerminalHandler) source(r slog.Record) string {
	if r.PC == 0 {
		return ""
	}
	f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	return fmt.Sprintf("%s:%d", trimSourcePath(f.File), f.Line)
}

func (h *TerminalHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *TerminalHandler) WithGroup(string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:           h.wr,
		useColor:     h.useColor,
		attrs:        append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
		fieldPadding: make(map[string]int),
	}
}

type leveler struct{ minLevel slog.Level }

func (l *leveler) Level() slog.Level { return l.minLevel }

// JSONHandler returns a handler printing one JSON object per record.
func JSONHandler(wr io.Writer) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, false) },
		Level:       &leveler{levelMaxVerbosity},
	})
}

// LogfmtHandler returns a handler printing records as logfmt key=value lines.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr { return replaceAttr(attr, true) },
		Level:       &leveler{levelMaxVerbosity},
	})
}

// replaceAttr renames the time and level keys to "t" and "lvl", and renders
// stringers (including nil pointers) as strings. Logfmt output formats times
// with timeFormat, JSON keeps them native.
func replaceAttr(attr slog.Attr, logfmt bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() != slog.KindTime {
			break
		}
		if logfmt {
			return slog.String("t", attr.Value.Time().Format(timeFormat))
		}
		return slog.Attr{Key: "t", Value: attr.Value}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}
	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr.Value = slog.StringValue(v.Format(timeFormat))
		}
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	}
	return attr
}
