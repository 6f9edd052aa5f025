package daemon

import (
	"testing"

	"switchboard/internal/types"
)

func TestEventHubPublishSubscribe(t *testing.T) {
	hub := newEventHub()
	ch, cancel := hub.Subscribe()
	if hub.Count() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Count())
	}

	hub.Publish(types.UIEvent{Name: types.EventTerminalOpened, TerminalID: "t1"})
	ev := <-ch
	if ev.Name != types.EventTerminalOpened || ev.TerminalID != "t1" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatalf("publish should stamp OccurredAt")
	}

	cancel()
	if hub.Count() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", hub.Count())
	}
	if _, open := <-ch; open {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestEventHubDropsWhenSubscriberStalls(t *testing.T) {
	hub := newEventHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < eventSubscriberBuffer+5; i++ {
		hub.Publish(types.UIEvent{Name: types.EventTerminalOpened})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != eventSubscriberBuffer {
				t.Fatalf("expected %d buffered events, got %d", eventSubscriberBuffer, received)
			}
			return
		}
	}
}

func TestTailHubBroadcastAndClose(t *testing.T) {
	hub := newTailHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Broadcast(types.OutputChunk{TerminalID: "t1", Data: "chunk"})
	chunk := <-ch
	if chunk.Data != "chunk" {
		t.Fatalf("unexpected chunk %+v", chunk)
	}

	hub.Close()
	if _, open := <-ch; open {
		t.Fatalf("expected closed channel after hub close")
	}

	late, lateCancel := hub.Subscribe()
	defer lateCancel()
	if _, open := <-late; open {
		t.Fatalf("subscribe after close should hand back a closed channel")
	}
}
