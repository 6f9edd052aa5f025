package daemon

import (
	"sync"
	"time"

	"switchboard/internal/types"
)

const eventSubscriberBuffer = 64

// eventHub fans UI events out to /v1/events subscribers. Publishing never
// blocks: a subscriber that cannot keep up loses events rather than stalling
// the output-processing path.
type eventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan types.UIEvent
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[int]chan types.UIEvent)}
}

func (h *eventHub) Subscribe() (<-chan types.UIEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan types.UIEvent, eventSubscriberBuffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		sub, ok := h.subs[id]
		if ok {
			delete(h.subs, id)
		}
		h.mu.Unlock()
		if ok {
			close(sub)
		}
	}
	return ch, cancel
}

func (h *eventHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *eventHub) Publish(event types.UIEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// tailHub streams raw output chunks of a single terminal to its followers.
type tailHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan types.OutputChunk
	closed bool
}

func newTailHub() *tailHub {
	return &tailHub{subs: make(map[int]chan types.OutputChunk)}
}

func (h *tailHub) Subscribe() (<-chan types.OutputChunk, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan types.OutputChunk, eventSubscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.nextID++
	id := h.nextID
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		sub, ok := h.subs[id]
		if ok {
			delete(h.subs, id)
		}
		h.mu.Unlock()
		if ok {
			close(sub)
		}
	}
	return ch, cancel
}

func (h *tailHub) Broadcast(chunk types.OutputChunk) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- chunk:
		default:
		}
	}
}

// Close ends every follower stream; used when the terminal is torn down.
func (h *tailHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
