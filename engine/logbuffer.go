package engine

import (
	"bytes"
	"strings"
	"sync"
)

// logBuffer captures the engine's structured log lines in memory so a
// combined call can hand the trail back to the caller. Writes are
// serialized because batch validation logs from multiple goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newLogBuffer() *logBuffer {
	return &logBuffer{}
}

// Write implements io.Writer for zerolog.
func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Lines returns the captured log lines and clears the buffer.
func (b *logBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw := strings.TrimRight(b.buf.String(), "\n")
	b.buf.Reset()
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// Reset discards any captured lines.
func (b *logBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
