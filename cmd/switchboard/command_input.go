package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type InputCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewInputCommand(stdout, stderr io.Writer, newClient clientFactory) *InputCommand {
	return &InputCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *InputCommand) Run(args []string) error {
	fs := flag.NewFlagSet("input", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	raw := fs.Bool("raw", false, "send the text without a trailing newline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("input requires a terminal id and text")
	}
	id := fs.Arg(0)
	data := strings.Join(fs.Args()[1:], " ")
	if !*raw {
		data += "\n"
	}

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}
	if err := client.SendInput(ctx, id, data); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}
