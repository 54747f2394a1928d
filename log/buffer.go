package log

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a single captured log line kept by the in-memory buffer.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Buffer keeps the most recent log entries in a fixed-capacity ring.
// When full, the oldest entry is evicted first. It is safe for
// concurrent use.
type Buffer struct {
	mu    sync.RWMutex
	ring  []Entry
	next  int
	count int
}

var captureBuffer *Buffer // process-wide, set by CaptureLogs

// NewBuffer creates a Buffer with the given capacity. Capacity must be
// positive.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		panic("log buffer capacity must be positive")
	}
	return &Buffer{ring: make([]Entry, capacity)}
}

// Run implements zerolog.Hook so the buffer can be attached to a logger.
func (b *Buffer) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.DebugLevel || level > zerolog.ErrorLevel {
		return
	}
	b.mu.Lock()
	b.ring[b.next] = Entry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
	}
	b.next = (b.next + 1) % len(b.ring)
	if b.count < len(b.ring) {
		b.count++
	}
	b.mu.Unlock()
}

// Entries returns up to limit entries, newest first. A limit <= 0 returns all
// buffered entries. If level is non-empty, only entries of that level are
// returned.
func (b *Buffer) Entries(limit int, level string) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0, b.count)
	for i := 0; i < b.count; i++ {
		// walk backwards from the most recently written slot
		idx := (b.next - 1 - i + len(b.ring)) % len(b.ring)
		e := b.ring[idx]
		if level != "" && e.Level != level {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// CaptureLogs installs a process-wide ring buffer of the given capacity on the
// current logger and returns it. Calling it again replaces the previous
// buffer. The buffer only observes messages emitted after installation.
func CaptureLogs(capacity int) *Buffer {
	b := NewBuffer(capacity)
	setLogger(getLogger().Hook(b))
	captureBuffer = b
	return b
}

// CapturedLogs returns the process-wide buffer installed by CaptureLogs, or
// nil when capture is not enabled.
func CapturedLogs() *Buffer {
	return captureBuffer
}

// StopCapture removes the process-wide buffer. Messages logged afterwards are
// no longer captured; already-buffered entries are discarded.
func StopCapture() {
	captureBuffer = nil
	// Reinstall a hook-free logger with the current level and stderr output.
	// The previous hook keeps a reference to the dropped buffer otherwise.
	Init(Level(), "stderr", nil)
}
