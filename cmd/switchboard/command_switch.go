package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

type SwitchCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewSwitchCommand(stdout, stderr io.Writer, newClient clientFactory) *SwitchCommand {
	return &SwitchCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *SwitchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("switch requires a terminal id and a profile id")
	}
	id := fs.Arg(0)
	profileID := fs.Arg(1)

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}

	result, err := client.SwitchProfile(ctx, id, profileID)
	if err != nil {
		return err
	}
	if !result.Success {
		if result.Error != "" {
			return errors.New(result.Error)
		}
		return errors.New("switch failed")
	}
	fmt.Fprintf(c.stdout, "switched %s to %s\n", result.TerminalID, result.ProfileID)
	return nil
}
