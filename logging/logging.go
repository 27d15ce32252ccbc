// Package logging owns the process-wide logger.
//
// Call Init once at startup; until then L returns a default info-level text
// logger writing to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Skryldev/snapweave/config"
	"github.com/Skryldev/snapweave/core"
	"github.com/Skryldev/snapweave/hooks"
)

// Name is attached to every record as the "logger" attribute.
const Name = "snapweave"

var (
	mu      sync.RWMutex
	current core.Logger
)

// Init builds a logger from cfg, installs it process-wide and returns it.
func Init(cfg config.Config) core.Logger {
	l := New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	Set(l)
	return l
}

// New returns a logger writing to w.  level is one of debug, info, warn or
// error (info when unrecognised); format is "json" or anything else for text.
func New(w io.Writer, level, format string) *hooks.SlogLogger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return hooks.NewSlogLogger(slog.New(h).With("logger", Name))
}

// Set installs l as the process-wide logger.  A nil l restores the lazy
// default.
func Set(l core.Logger) {
	mu.Lock()
	current = l
	mu.Unlock()
}

// L returns the process-wide logger, creating the default on first use.
func L() core.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = New(os.Stderr, "info", "text")
	}
	return current
}

// Discard returns a logger that drops every record.
func Discard() core.Logger {
	return hooks.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
