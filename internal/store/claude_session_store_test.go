package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"switchboard/internal/types"
)

func TestClaudeSessionStoreLifecycle(t *testing.T) {
	store := NewFileClaudeSessionStore(t.TempDir())
	ctx := context.Background()
	cwd := "/home/dev/project"

	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{Cwd: cwd}); err == nil {
		t.Fatalf("expected missing terminal id to fail")
	}
	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-1"}); err == nil {
		t.Fatalf("expected missing cwd to fail")
	}

	first, err := store.Upsert(ctx, &types.ClaudeSessionRecord{
		TerminalID: "term-1",
		Cwd:        cwd,
		Title:      "refactor",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.SessionID != "" || first.StartedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Fatalf("unexpected record: %#v", first)
	}

	if _, err := store.UpdateSessionID(ctx, cwd, "term-1", "sess-abc-123"); err != nil {
		t.Fatalf("update session id: %v", err)
	}
	if _, err := store.UpdateSessionID(ctx, cwd, "term-9", "sess-zzz"); err == nil {
		t.Fatalf("expected unknown terminal to fail")
	}

	got, ok, err := store.Get(ctx, cwd, "term-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.SessionID != "sess-abc-123" || !got.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("unexpected record after update: %#v", got)
	}

	// A later terminal in the same directory without a captured session id
	// must not shadow the resumable one.
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-2", Cwd: cwd}); err != nil {
		t.Fatalf("upsert second: %v", err)
	}
	records, err := store.ListForCwd(ctx, cwd)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].TerminalID != "term-2" {
		t.Fatalf("expected newest first, got %#v", records)
	}
	recent, ok, err := store.MostRecent(ctx, cwd)
	if err != nil || !ok || recent.TerminalID != "term-1" {
		t.Fatalf("most recent: %#v ok=%v err=%v", recent, ok, err)
	}

	other, err := store.ListForCwd(ctx, "/home/dev/other")
	if err != nil || len(other) != 0 {
		t.Fatalf("expected empty list for other cwd, got %#v err=%v", other, err)
	}

	if err := store.Delete(ctx, cwd, "term-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, cwd, "term-2"); err == nil {
		t.Fatalf("expected second delete to fail")
	}
	records, err = store.ListForCwd(ctx, cwd)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one record, got %#v err=%v", records, err)
	}
}

func TestClaudeSessionStoreUpsertKeepsSessionID(t *testing.T) {
	store := NewFileClaudeSessionStore(t.TempDir())
	ctx := context.Background()
	cwd := "/home/dev/project"

	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-1", Cwd: cwd, SessionID: "sess-1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Re-registering the terminal without a session id keeps the captured one.
	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-1", Cwd: cwd, Title: "again"}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, ok, err := store.Get(ctx, cwd, "term-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.SessionID != "sess-1" || got.Title != "again" {
		t.Fatalf("unexpected record: %#v", got)
	}
}

func TestClaudeSessionStorePathsDoNotCollide(t *testing.T) {
	root := t.TempDir()
	store := NewFileClaudeSessionStore(root)
	ctx := context.Background()

	// Same base name, different parents.
	cwdA := "/home/alice/project"
	cwdB := "/home/bob/project"
	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-a", Cwd: cwdA, SessionID: "sess-a"}); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if _, err := store.Upsert(ctx, &types.ClaudeSessionRecord{TerminalID: "term-b", Cwd: cwdB, SessionID: "sess-b"}); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	if store.pathFor(cwdA) == store.pathFor(cwdB) {
		t.Fatalf("expected distinct files for %q and %q", cwdA, cwdB)
	}
	if filepath.Dir(store.pathFor(cwdA)) != root {
		t.Fatalf("expected files under state root, got %q", store.pathFor(cwdA))
	}

	recent, ok, err := store.MostRecent(ctx, cwdA)
	if err != nil || !ok || recent.SessionID != "sess-a" {
		t.Fatalf("most recent a: %#v ok=%v err=%v", recent, ok, err)
	}
	recent, ok, err = store.MostRecent(ctx, cwdB)
	if err != nil || !ok || recent.SessionID != "sess-b" {
		t.Fatalf("most recent b: %#v ok=%v err=%v", recent, ok, err)
	}
}
