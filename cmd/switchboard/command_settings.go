package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"switchboard/internal/types"
)

type SettingsCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewSettingsCommand(stdout, stderr io.Writer, newClient clientFactory) *SettingsCommand {
	return &SettingsCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *SettingsCommand) Run(args []string) error {
	if len(args) == 0 {
		return errors.New("settings requires a subcommand: autoswitch")
	}
	switch args[0] {
	case "autoswitch":
		return c.runAutoSwitch(args[1:])
	default:
		return fmt.Errorf("unknown settings subcommand: %s", args[0])
	}
}

// runAutoSwitch prints the stored settings, or updates them when given a
// positional on/off or the --on-rate-limit flag.
func (c *SettingsCommand) runAutoSwitch(args []string) error {
	fs := flag.NewFlagSet("settings autoswitch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	onRateLimit := fs.String("on-rate-limit", "", "switch automatically when rate limited: on|off")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return errors.New("settings autoswitch takes at most one of: on, off")
	}

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}

	settings, err := client.AutoSwitchSettings(ctx)
	if err != nil {
		return err
	}

	changed := false
	if fs.NArg() == 1 {
		enabled, err := parseOnOff(fs.Arg(0))
		if err != nil {
			return err
		}
		settings.Enabled = enabled
		changed = true
	}
	if *onRateLimit != "" {
		value, err := parseOnOff(*onRateLimit)
		if err != nil {
			return err
		}
		settings.AutoSwitchOnRateLimit = value
		changed = true
	}

	if changed {
		settings, err = client.SetAutoSwitch(ctx, *settings)
		if err != nil {
			return err
		}
	}
	return printAutoSwitch(c.stdout, settings)
}

func parseOnOff(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q: must be on or off", raw)
	}
}

func printAutoSwitch(out io.Writer, settings *types.AutoSwitchSettings) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(settings)
}
