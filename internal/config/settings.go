package config

import (
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDaemonAddress     = "127.0.0.1:7788"
	defaultClaudeCommand     = "claude"
	defaultOpenCodeCommand   = "opencode"
	defaultOpenCodeProvider  = "claude"
	defaultInterruptSettleMS = 1000
	defaultExitSettleMS      = 500
	defaultCooldownMinutes   = 300
	defaultScrollbackBytes   = 256 * 1024
)

type Config struct {
	Daemon        DaemonConfig        `toml:"daemon"`
	Agents        AgentsConfig        `toml:"agents"`
	Switch        SwitchConfig        `toml:"switch"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
	Terminal      TerminalConfig      `toml:"terminal"`
	Logging       LoggingConfig       `toml:"logging"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type DaemonConfig struct {
	Address string `toml:"address"`
}

type AgentsConfig struct {
	Claude   ClaudeAgentConfig   `toml:"claude"`
	OpenCode OpenCodeAgentConfig `toml:"opencode"`
}

type ClaudeAgentConfig struct {
	Command string `toml:"command"`
}

type OpenCodeAgentConfig struct {
	Command  string `toml:"command"`
	Provider string `toml:"provider"`
}

type SwitchConfig struct {
	InterruptSettleMS int `toml:"interrupt_settle_ms"`
	ExitSettleMS      int `toml:"exit_settle_ms"`
}

type RateLimitConfig struct {
	CooldownMinutes int `toml:"cooldown_minutes"`
}

type TerminalConfig struct {
	Shell           string `toml:"shell"`
	ScrollbackBytes int    `toml:"scrollback_bytes"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type NotificationsConfig struct {
	Enabled *bool  `toml:"enabled"`
	Method  string `toml:"method"`
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) DaemonAddress() string {
	addr := strings.TrimSpace(c.Daemon.Address)
	if addr == "" {
		return defaultDaemonAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultDaemonAddress
	}
	return addr
}

func (c Config) DaemonBaseURL() string {
	return "http://" + c.DaemonAddress()
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) ClaudeCommand() string {
	cmd := strings.TrimSpace(c.Agents.Claude.Command)
	if cmd == "" {
		return defaultClaudeCommand
	}
	return cmd
}

func (c Config) OpenCodeCommand() string {
	cmd := strings.TrimSpace(c.Agents.OpenCode.Command)
	if cmd == "" {
		return defaultOpenCodeCommand
	}
	return cmd
}

func (c Config) OpenCodeProvider() string {
	provider := strings.ToLower(strings.TrimSpace(c.Agents.OpenCode.Provider))
	if provider == "" {
		return defaultOpenCodeProvider
	}
	return provider
}

func (c Config) InterruptSettle() time.Duration {
	ms := c.Switch.InterruptSettleMS
	if ms < 0 {
		return 0
	}
	if ms == 0 {
		ms = defaultInterruptSettleMS
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) ExitSettle() time.Duration {
	ms := c.Switch.ExitSettleMS
	if ms < 0 {
		return 0
	}
	if ms == 0 {
		ms = defaultExitSettleMS
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) RateLimitCooldown() time.Duration {
	minutes := c.RateLimit.CooldownMinutes
	if minutes <= 0 {
		minutes = defaultCooldownMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func (c Config) Shell() string {
	shell := strings.TrimSpace(c.Terminal.Shell)
	if shell != "" {
		return shell
	}
	if env := strings.TrimSpace(os.Getenv("SHELL")); env != "" {
		return env
	}
	return "/bin/bash"
}

func (c Config) Scrollback() int {
	if c.Terminal.ScrollbackBytes <= 0 {
		return defaultScrollbackBytes
	}
	return c.Terminal.ScrollbackBytes
}

func (c Config) NotificationsEnabled() bool {
	if c.Notifications.Enabled == nil {
		return true
	}
	return *c.Notifications.Enabled
}

func (c Config) NotificationMethod() string {
	method := strings.ToLower(strings.TrimSpace(c.Notifications.Method))
	if method == "" {
		return "auto"
	}
	return method
}
