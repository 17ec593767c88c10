package ffmpeg

import (
	"bytes"
	"strings"
	"sync"
)

// Tail keeps the last lines written to it. ffmpeg separates progress updates
// with carriage returns, so both \r and \n end a line.
type Tail struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial bytes.Buffer
}

// NewTail returns a Tail that retains at most limit lines.
func NewTail(limit int) *Tail {
	if limit <= 0 {
		limit = 20
	}
	return &Tail{limit: limit}
}

func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		if b == '\n' || b == '\r' {
			t.flush()
			continue
		}
		t.partial.WriteByte(b)
	}
	return len(p), nil
}

func (t *Tail) flush() {
	line := strings.TrimSpace(t.partial.String())
	t.partial.Reset()
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

// Lines returns the retained lines, including an unterminated final line.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := append([]string(nil), t.lines...)
	if last := strings.TrimSpace(t.partial.String()); last != "" {
		out = append(out, last)
		if len(out) > t.limit {
			out = out[len(out)-t.limit:]
		}
	}
	return out
}

// String joins the retained lines for error detail.
func (t *Tail) String() string {
	return strings.Join(t.Lines(), "\n")
}
