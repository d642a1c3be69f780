// Package testutil provides log capture helpers for tests that assert
// on structured logging behavior.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogRecord is one captured log record.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedHandler is a slog.Handler that keeps every record in memory
// so tests can assert on messages and attributes after the fact.
type BufferedHandler struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewBufferedHandler creates an empty capture handler.
func NewBufferedHandler() *BufferedHandler {
	return &BufferedHandler{}
}

// NewLogger returns a logger writing into a fresh capture handler,
// together with the handler for assertions.
func NewLogger() (*slog.Logger, *BufferedHandler) {
	h := NewBufferedHandler()
	return slog.New(h), h
}

// Handle implements slog.Handler.
func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// Enabled implements slog.Handler; tests capture every level.
func (h *BufferedHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler. Capture is flat, the handler is
// reused as-is.
func (h *BufferedHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *BufferedHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of everything captured so far.
func (h *BufferedHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogRecord(nil), h.records...)
}

// ContainsMessage reports whether any record's message contains the
// given substring.
func (h *BufferedHandler) ContainsMessage(message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// RecordsByLevel returns the captured records at exactly the given level.
func (h *BufferedHandler) RecordsByLevel(level slog.Level) []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []LogRecord
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}
