package daemon

import "sync"

const outputBufferMaxBytes = 256 * 1024

// outputBuffer keeps the tail of a terminal's output for lookback parsing.
// Oldest bytes are trimmed once the cap is reached; detection only ever
// needs recent context (an email printed near a token, a wrapped notice).
type outputBuffer struct {
	mu       sync.Mutex
	buf      []byte
	maxBytes int
}

func newOutputBuffer(maxBytes int) *outputBuffer {
	if maxBytes <= 0 {
		maxBytes = outputBufferMaxBytes
	}
	return &outputBuffer{
		buf:      make([]byte, 0, maxBytes),
		maxBytes: maxBytes,
	}
}

func (b *outputBuffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) >= b.maxBytes {
		b.buf = append(b.buf[:0], p[len(p)-b.maxBytes:]...)
		return
	}

	overflow := len(b.buf) + len(p) - b.maxBytes
	if overflow > 0 {
		b.buf = b.buf[overflow:]
	}
	b.buf = append(b.buf, p...)
}

// Tail returns up to max trailing bytes as a string.
func (b *outputBuffer) Tail(max int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if max <= 0 || max > len(b.buf) {
		max = len(b.buf)
	}
	return string(b.buf[len(b.buf)-max:])
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *outputBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *outputBuffer) Clear() {
	b.mu.Lock()
	b.buf = b.buf[:0]
	b.mu.Unlock()
}
