package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"switchboard/internal/types"
)

func writeSSEFrame(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("response writer does not support flushing")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func TestClientEventStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/events" {
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("missing accept header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		// Comment line first, the way the daemon primes its streams.
		_, _ = w.Write([]byte(":\n\n"))
		w.(http.Flusher).Flush()
		writeSSEFrame(t, w, types.UIEvent{Name: types.EventTerminalOpened, TerminalID: "term-1"})
		writeSSEFrame(t, w, types.UIEvent{Name: types.EventProfileSwitched, TerminalID: "term-1"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ch, cancel, err := c.EventStream(context.Background())
	if err != nil {
		t.Fatalf("EventStream error: %v", err)
	}
	defer cancel()

	first := waitEvent(t, ch)
	if first.Name != types.EventTerminalOpened || first.TerminalID != "term-1" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	second := waitEvent(t, ch)
	if second.Name != types.EventProfileSwitched {
		t.Fatalf("unexpected second event: %+v", second)
	}

	// Handler returned, so the stream ends and the channel closes.
	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected channel to close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func waitEvent(t *testing.T, ch <-chan types.UIEvent) types.UIEvent {
	t.Helper()
	select {
	case event, open := <-ch:
		if !open {
			t.Fatal("event channel closed early")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return types.UIEvent{}
}

func TestClientFollowOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() != "/v1/terminals/term-1/output?follow=1" {
			t.Errorf("unexpected request to %s", r.URL.RequestURI())
		}
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSEFrame(t, w, types.OutputChunk{TerminalID: "term-1", Data: "scrollback so far\n"})
		writeSSEFrame(t, w, types.OutputChunk{TerminalID: "term-1", Data: "live line\n"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	ch, cancel, err := c.FollowOutput(context.Background(), "term-1")
	if err != nil {
		t.Fatalf("FollowOutput error: %v", err)
	}
	defer cancel()

	var got []string
	for chunk := range ch {
		if chunk.TerminalID != "term-1" {
			t.Fatalf("unexpected terminal id: %q", chunk.TerminalID)
		}
		got = append(got, chunk.Data)
	}
	if len(got) != 2 || got[0] != "scrollback so far\n" || got[1] != "live line\n" {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestClientStreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, _, err := c.EventStream(context.Background())
	apiErr := asAPIError(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "unauthorized" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestForEachData(t *testing.T) {
	raw := strings.Join([]string{
		":",
		"",
		"data: {\"a\":1}",
		"",
		"event: ignored",
		"data: line one",
		"data: line two",
		"",
		"data: trailing",
		"",
	}, "\n")

	var payloads []string
	forEachData(strings.NewReader(raw), func(payload []byte) {
		payloads = append(payloads, string(payload))
	})

	want := []string{`{"a":1}`, "line one\nline two", "trailing"}
	if len(payloads) != len(want) {
		t.Fatalf("got %d payloads, want %d: %q", len(payloads), len(want), payloads)
	}
	for i := range want {
		if payloads[i] != want[i] {
			t.Fatalf("payload %d: got %q, want %q", i, payloads[i], want[i])
		}
	}
}
