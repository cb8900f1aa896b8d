package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogEntry is a captured log record
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler records every log entry it receives. Handlers derived with
// WithAttrs share the same entry list and carry their own attributes.
type CaptureHandler struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	attrs   []slog.Attr
}

// NewCaptureHandler creates an empty capturing handler
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	*h.entries = append(*h.entries, LogEntry{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{mu: h.mu, entries: h.entries, attrs: merged}
}

// WithGroup implements slog.Handler; groups are flattened
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Entries returns a copy of the captured entries
func (h *CaptureHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogEntry, len(*h.entries))
	copy(out, *h.entries)
	return out
}

// Find returns the first entry whose message contains msg
func (h *CaptureHandler) Find(msg string) (LogEntry, bool) {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, msg) {
			return e, true
		}
	}
	return LogEntry{}, false
}

// NewTestLogger creates a logger backed by a capturing handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	t.Helper()
	h := NewCaptureHandler()
	return slog.New(h), h
}

// AssertLogged fails the test when no entry at level contains msg
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, msg string) {
	t.Helper()
	for _, e := range h.Entries() {
		if e.Level == level && strings.Contains(e.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, msg)
	for _, e := range h.Entries() {
		t.Logf("  [%s] %s %v", e.Level, e.Message, e.Attrs)
	}
}
