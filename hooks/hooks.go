// Package hooks provides the Hook and Logger implementations used by the
// pipeline and the Photo facade.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/snapweave/core"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps a slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

// Slog exposes the underlying slog.Logger.
func (s *SlogLogger) Slog() *slog.Logger { return s.log }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, fields...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, fields...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, fields...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, fields...)
}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before and after each applied edit.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, buf *core.Buffer) {
	h.logger.Debug("pipeline.step.start",
		"step", stepName,
		"height", buf.Height,
		"width", buf.Width,
		"channels", buf.Channels,
		"depth", int(buf.Depth),
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, buf *core.Buffer, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("pipeline.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	out := "nil"
	if buf != nil {
		out = fmt.Sprintf("%dx%dx%d %d-bit", buf.Height, buf.Width, buf.Channels, buf.Depth)
	}
	h.logger.Debug("pipeline.step.done",
		"step", stepName,
		"duration_ms", d.Milliseconds(),
		"output", out,
	)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	stepDurations map[string]time.Duration // cumulative per step
	stepCalls     map[string]int64
	stepErrors    map[string]int64

	totalThroughputB int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		stepDurations: make(map[string]time.Duration),
		stepCalls:     make(map[string]int64),
		stepErrors:    make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(stepName string, d interface{ Seconds() float64 }) {
	dur, ok := d.(time.Duration)
	if !ok {
		dur = time.Duration(math.Round(d.Seconds() * float64(time.Second)))
	}
	m.mu.Lock()
	m.stepDurations[stepName] += dur
	m.stepCalls[stepName]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	atomic.AddInt64(&m.totalThroughputB, bytes)
}

func (m *InMemoryMetrics) RecordError(stepName string, _ string) {
	m.mu.Lock()
	m.stepErrors[stepName]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MetricsSnapshot{
		StepDurations:    maps.Clone(m.stepDurations),
		StepCalls:        maps.Clone(m.stepCalls),
		StepErrors:       maps.Clone(m.stepErrors),
		TotalThroughputB: atomic.LoadInt64(&m.totalThroughputB),
	}
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StepDurations    map[string]time.Duration
	StepCalls        map[string]int64
	StepErrors       map[string]int64
	TotalThroughputB int64
}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds pipeline events into a MetricsCollector.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.Buffer) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, buf *core.Buffer, d time.Duration, err error) {
	h.collector.RecordProcessingTime(stepName, d)
	if err != nil {
		h.collector.RecordError(stepName, "edit")
	}
	if buf != nil {
		h.collector.RecordThroughput(buf.SizeBytes())
	}
}

// compile-time interface checks
var (
	_ core.Logger           = (*SlogLogger)(nil)
	_ core.Hook             = (*LoggingHook)(nil)
	_ core.Hook             = (*MetricsHook)(nil)
	_ core.MetricsCollector = (*InMemoryMetrics)(nil)
)
