package daemon

import (
	"strings"
	"testing"
)

func TestOutputBufferAppendAndTail(t *testing.T) {
	buf := newOutputBuffer(10)

	buf.Append([]byte("abc"))
	buf.Append([]byte("def"))
	if got := buf.String(); got != "abcdef" {
		t.Fatalf("expected abcdef, got %q", got)
	}
	if got := buf.Tail(2); got != "ef" {
		t.Fatalf("expected ef, got %q", got)
	}
	if got := buf.Tail(0); got != "abcdef" {
		t.Fatalf("Tail(0) should return everything, got %q", got)
	}
	if got := buf.Tail(100); got != "abcdef" {
		t.Fatalf("oversized tail should return everything, got %q", got)
	}
	if got := buf.Len(); got != 6 {
		t.Fatalf("expected len 6, got %d", got)
	}
}

func TestOutputBufferOverflowKeepsNewest(t *testing.T) {
	buf := newOutputBuffer(10)

	buf.Append([]byte("0123456789"))
	buf.Append([]byte("abcd"))
	if got := buf.String(); got != "456789abcd" {
		t.Fatalf("expected oldest bytes dropped, got %q", got)
	}

	buf.Append([]byte(strings.Repeat("x", 25)))
	if got := buf.String(); got != strings.Repeat("x", 10) {
		t.Fatalf("oversized chunk should keep its newest bytes, got %q", got)
	}
}

func TestOutputBufferClear(t *testing.T) {
	buf := newOutputBuffer(10)
	buf.Append([]byte("data"))
	buf.Clear()
	if buf.Len() != 0 || buf.String() != "" {
		t.Fatalf("expected empty buffer after clear")
	}
}
