package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:7788" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.DaemonBaseURL() != "http://127.0.0.1:7788" {
		t.Fatalf("unexpected daemon base url: %q", cfg.DaemonBaseURL())
	}
	if cfg.ClaudeCommand() != "claude" || cfg.OpenCodeCommand() != "opencode" {
		t.Fatalf("unexpected agent commands: %q %q", cfg.ClaudeCommand(), cfg.OpenCodeCommand())
	}
	if cfg.OpenCodeProvider() != "claude" {
		t.Fatalf("unexpected opencode provider: %q", cfg.OpenCodeProvider())
	}
	if cfg.InterruptSettle() != time.Second || cfg.ExitSettle() != 500*time.Millisecond {
		t.Fatalf("unexpected settle durations: %v %v", cfg.InterruptSettle(), cfg.ExitSettle())
	}
	if cfg.RateLimitCooldown() != 5*time.Hour {
		t.Fatalf("unexpected cooldown: %v", cfg.RateLimitCooldown())
	}
	if cfg.Scrollback() != 256*1024 {
		t.Fatalf("unexpected scrollback: %d", cfg.Scrollback())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if !cfg.NotificationsEnabled() || cfg.NotificationMethod() != "auto" {
		t.Fatalf("unexpected notification defaults: %v %q", cfg.NotificationsEnabled(), cfg.NotificationMethod())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".switchboard")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte(`[daemon]
address = "http://127.0.0.1:9999/"

[agents.claude]
command = "/opt/bin/claude"

[agents.opencode]
provider = "OpenAI"

[switch]
interrupt_settle_ms = 250
exit_settle_ms = -1

[rate_limit]
cooldown_minutes = 60

[terminal]
scrollback_bytes = 4096

[logging]
level = "debug"

[notifications]
enabled = false
method = "Bell"
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DaemonAddress() != "127.0.0.1:9999" {
		t.Fatalf("unexpected daemon address: %q", cfg.DaemonAddress())
	}
	if cfg.ClaudeCommand() != "/opt/bin/claude" {
		t.Fatalf("unexpected claude command: %q", cfg.ClaudeCommand())
	}
	if cfg.OpenCodeProvider() != "openai" {
		t.Fatalf("unexpected opencode provider: %q", cfg.OpenCodeProvider())
	}
	if cfg.InterruptSettle() != 250*time.Millisecond {
		t.Fatalf("unexpected interrupt settle: %v", cfg.InterruptSettle())
	}
	if cfg.ExitSettle() != 0 {
		t.Fatalf("expected negative exit settle to disable the wait, got %v", cfg.ExitSettle())
	}
	if cfg.RateLimitCooldown() != time.Hour {
		t.Fatalf("unexpected cooldown: %v", cfg.RateLimitCooldown())
	}
	if cfg.Scrollback() != 4096 {
		t.Fatalf("unexpected scrollback: %d", cfg.Scrollback())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
	if cfg.NotificationsEnabled() {
		t.Fatalf("expected notifications disabled")
	}
	if cfg.NotificationMethod() != "bell" {
		t.Fatalf("unexpected notification method: %q", cfg.NotificationMethod())
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".switchboard")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[daemon\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected malformed config to fail")
	}
}

func TestShellFallsBackToEnv(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/fish")
	cfg := Config{}
	if cfg.Shell() != "/usr/bin/fish" {
		t.Fatalf("unexpected shell: %q", cfg.Shell())
	}
	cfg.Terminal.Shell = "/bin/zsh"
	if cfg.Shell() != "/bin/zsh" {
		t.Fatalf("expected explicit shell to win, got %q", cfg.Shell())
	}
	t.Setenv("SHELL", "")
	cfg.Terminal.Shell = ""
	if cfg.Shell() != "/bin/bash" {
		t.Fatalf("unexpected shell fallback: %q", cfg.Shell())
	}
}
