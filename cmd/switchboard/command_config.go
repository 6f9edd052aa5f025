package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"
	"time"

	"switchboard/internal/config"

	toml "github.com/pelletier/go-toml/v2"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

// configOutput is the effective configuration after defaults are
// applied, not the raw file contents.
type configOutput struct {
	ConfigPath    string                       `json:"config_path" toml:"config_path"`
	Daemon        effectiveDaemonConfig        `json:"daemon" toml:"daemon"`
	Agents        effectiveAgentsConfig        `json:"agents" toml:"agents"`
	Switch        effectiveSwitchConfig        `json:"switch" toml:"switch"`
	RateLimit     effectiveRateLimitConfig     `json:"rate_limit" toml:"rate_limit"`
	Terminal      effectiveTerminalConfig      `json:"terminal" toml:"terminal"`
	Logging       effectiveLoggingConfig       `json:"logging" toml:"logging"`
	Notifications effectiveNotificationsConfig `json:"notifications" toml:"notifications"`
}

type effectiveDaemonConfig struct {
	Address string `json:"address" toml:"address"`
	BaseURL string `json:"base_url" toml:"base_url"`
}

type effectiveAgentsConfig struct {
	Claude   effectiveClaudeAgentConfig   `json:"claude" toml:"claude"`
	OpenCode effectiveOpenCodeAgentConfig `json:"opencode" toml:"opencode"`
}

type effectiveClaudeAgentConfig struct {
	Command string `json:"command" toml:"command"`
}

type effectiveOpenCodeAgentConfig struct {
	Command  string `json:"command" toml:"command"`
	Provider string `json:"provider" toml:"provider"`
}

type effectiveSwitchConfig struct {
	InterruptSettleMS int `json:"interrupt_settle_ms" toml:"interrupt_settle_ms"`
	ExitSettleMS      int `json:"exit_settle_ms" toml:"exit_settle_ms"`
}

type effectiveRateLimitConfig struct {
	CooldownMinutes int `json:"cooldown_minutes" toml:"cooldown_minutes"`
}

type effectiveTerminalConfig struct {
	Shell           string `json:"shell" toml:"shell"`
	ScrollbackBytes int    `json:"scrollback_bytes" toml:"scrollback_bytes"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveNotificationsConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Method  string `json:"method" toml:"method"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := buildConfigOutput(*defaults)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func buildConfigOutput(defaults bool) (configOutput, error) {
	path, err := config.ConfigPath()
	if err != nil {
		return configOutput{}, err
	}

	// The accessors fill defaults for a zero Config, so the defaults
	// mode just skips loading the file.
	var cfg config.Config
	if !defaults {
		cfg, err = config.Load()
		if err != nil {
			return configOutput{}, err
		}
	}

	return configOutput{
		ConfigPath: path,
		Daemon: effectiveDaemonConfig{
			Address: cfg.DaemonAddress(),
			BaseURL: cfg.DaemonBaseURL(),
		},
		Agents: effectiveAgentsConfig{
			Claude: effectiveClaudeAgentConfig{
				Command: cfg.ClaudeCommand(),
			},
			OpenCode: effectiveOpenCodeAgentConfig{
				Command:  cfg.OpenCodeCommand(),
				Provider: cfg.OpenCodeProvider(),
			},
		},
		Switch: effectiveSwitchConfig{
			InterruptSettleMS: int(cfg.InterruptSettle() / time.Millisecond),
			ExitSettleMS:      int(cfg.ExitSettle() / time.Millisecond),
		},
		RateLimit: effectiveRateLimitConfig{
			CooldownMinutes: int(cfg.RateLimitCooldown() / time.Minute),
		},
		Terminal: effectiveTerminalConfig{
			Shell:           cfg.Shell(),
			ScrollbackBytes: cfg.Scrollback(),
		},
		Logging: effectiveLoggingConfig{
			Level: cfg.LogLevel(),
		},
		Notifications: effectiveNotificationsConfig{
			Enabled: cfg.NotificationsEnabled(),
			Method:  cfg.NotificationMethod(),
		},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}
