package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestCredWatcherLoadOnce(t *testing.T) {
	t.Setenv(envClaudeOAuthToken, "old-token")
	t.Setenv(envAnthropicToken, "keep-me")
	t.Setenv("OPENCODE_API_KEY", "")
	t.Setenv("UNRELATED_KEY", "untouched")

	envPath := filepath.Join(t.TempDir(), "credentials.env")
	err := godotenv.Write(map[string]string{
		envClaudeOAuthToken: "new-token",
		envAnthropicToken:   "",
		"OPENCODE_API_KEY":  "oc-key",
		"SOME_OTHER":        "ignored",
	}, envPath)
	if err != nil {
		t.Fatalf("seed env file: %v", err)
	}

	watcher := newCredWatcher(envPath, nil)
	if err := watcher.LoadOnce(); err != nil {
		t.Fatalf("load once: %v", err)
	}

	if got := os.Getenv(envClaudeOAuthToken); got != "new-token" {
		t.Fatalf("token not applied, got %q", got)
	}
	if got := os.Getenv(envAnthropicToken); got != "keep-me" {
		t.Fatalf("empty file values must not clobber the environment, got %q", got)
	}
	if got := os.Getenv("OPENCODE_API_KEY"); got != "oc-key" {
		t.Fatalf("opencode key not applied, got %q", got)
	}
	if got := os.Getenv("SOME_OTHER"); got != "" {
		t.Fatalf("unknown file keys must not leak into the environment, got %q", got)
	}
}

func TestCredWatcherLoadOnceMissingFile(t *testing.T) {
	watcher := newCredWatcher(filepath.Join(t.TempDir(), "nope.env"), nil)
	if err := watcher.LoadOnce(); err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
}

func TestCredWatcherRunReloadsOnWrite(t *testing.T) {
	t.Setenv(envClaudeOAuthToken, "before")

	envPath := filepath.Join(t.TempDir(), "credentials.env")
	watcher := newCredWatcher(envPath, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the directory watch a moment to attach before writing.
	time.Sleep(100 * time.Millisecond)
	err := godotenv.Write(map[string]string{envClaudeOAuthToken: "after"}, envPath)
	if err != nil {
		t.Fatalf("write env file: %v", err)
	}

	waitForCondition(t, 5*time.Second, func() bool {
		return os.Getenv(envClaudeOAuthToken) == "after"
	}, "watcher never applied the rewritten file")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled run, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not stop on cancel")
	}
}
