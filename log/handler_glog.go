package log

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// errVmoduleSyntax is returned when a user vmodule pattern is invalid.
var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// GlogHandler filters records glog style: a global verbosity, optionally
// raised for individual files or packages with vmodule rules.
//
// GlogHandler 模仿 glog 的过滤功能：全局日志级别以及按调用点文件覆盖级别。
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32 // global verbosity
	override atomic.Bool  // whether any vmodule rule is installed

	lock      sync.RWMutex // protects rules and siteCache
	rules     []vmoduleRule
	siteCache map[uintptr]slog.Level // resolved level per call site
}

// vmoduleRule raises the verbosity of every source file matching re.
type vmoduleRule struct {
	re    *regexp.Regexp
	level slog.Level
}

// NewGlogHandler wraps h with glog style filtering.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{
		origin:    h,
		siteCache: make(map[uintptr]slog.Level),
	}
}

// Verbosity sets the global verbosity.
func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule installs per-file verbosity rules, replacing the previous ones. The
// ruleset is a comma-separated list of pattern=N where N is a legacy verbosity
// and pattern is one of:
//
//	cache.go=5        files named cache.go
//	accountcache=4    all files of packages named accountcache
//	core/*=3          all files of all packages below core
func (h *GlogHandler) Vmodule(ruleset string) error {
	rules, err := parseVmodule(ruleset)
	if err != nil {
		return err
	}
	h.lock.Lock()
	defer h.lock.Unlock()

	h.rules = rules
	h.siteCache = make(map[uintptr]slog.Level)
	h.override.Store(len(rules) != 0)
	return nil
}

func parseVmodule(ruleset string) ([]vmoduleRule, error) {
	var rules []vmoduleRule
	for _, rule := range strings.Split(ruleset, ",") {
		if rule == "" {
			continue
		}
		pat, lvl, ok := strings.Cut(rule, "=")
		pat, lvl = strings.TrimSpace(pat), strings.TrimSpace(lvl)
		if !ok || pat == "" || lvl == "" || strings.Contains(lvl, "=") {
			return nil, errVmoduleSyntax
		}
		n, err := strconv.Atoi(lvl)
		if err != nil {
			return nil, errVmoduleSyntax
		}
		level := FromLegacyLevel(n)
		if level == LevelCrit {
			continue // never lowers anything below the global level
		}
		rules = append(rules, vmoduleRule{regexp.MustCompile(vmoduleMatcher(pat)), level})
	}
	return rules, nil
}

// vmoduleMatcher turns a vmodule pattern into a regular expression matched
// against absolute source file paths.
func vmoduleMatcher(pat string) string {
	var b strings.Builder
	b.WriteString(".*")
	for _, comp := range strings.Split(pat, "/") {
		switch comp {
		case "":
		case "*":
			b.WriteString("(/.*)?")
		default:
			b.WriteString("/" + regexp.QuoteMeta(comp))
		}
	}
	if !strings.HasSuffix(pat, ".go") {
		b.WriteString(`/[^/]+\.go`)
	}
	b.WriteString("$")
	return b.String()
}

// Enabled implements slog.Handler. With vmodule rules installed every level
// has to reach Handle, where the call site is known.
func (h *GlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.override.Load() || slog.Level(h.level.Load()) <= lvl
}

// WithAttrs implements slog.Handler.
func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.lock.RLock()
	siteCache := maps.Clone(h.siteCache)
	rules := append([]vmoduleRule(nil), h.rules...)
	h.lock.RUnlock()

	if siteCache == nil {
		siteCache = make(map[uintptr]slog.Level)
	}
	res := &GlogHandler{
		origin:    h.origin.WithAttrs(attrs),
		rules:     rules,
		siteCache: siteCache,
	}
	res.level.Store(h.level.Load())
	res.override.Store(h.override.Load())
	return res
}

// WithGroup implements slog.Handler. Groups are not supported.
func (h *GlogHandler) WithGroup(string) slog.Handler {
	panic("not implemented")
}

// Handle implements slog.Handler, passing the record on if either the global
// verbosity or the rule matching its call site allows it.
func (h *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if slog.Level(h.level.Load()) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	if h.siteLevel(r.PC) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	return nil
}

// siteLevel resolves and caches the verbosity of a call site. The last
// matching rule wins; unmatched sites keep the global verbosity.
func (h *GlogHandler) siteLevel(pc uintptr) slog.Level {
	h.lock.RLock()
	lvl, ok := h.siteCache[pc]
	h.lock.RUnlock()
	if ok {
		return lvl
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	h.lock.Lock()
	defer h.lock.Unlock()

	lvl = slog.Level(h.level.Load())
	for _, rule := range h.rules {
		if rule.re.MatchString("+" + frame.File) {
			lvl = rule.level
		}
	}
	h.siteCache[pc] = lvl
	return lvl
}
