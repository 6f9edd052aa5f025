package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
)

type CloseCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewCloseCommand(stdout, stderr io.Writer, newClient clientFactory) *CloseCommand {
	return &CloseCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *CloseCommand) Run(args []string) error {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("close requires a terminal id")
	}
	id := fs.Arg(0)

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}
	if err := client.CloseTerminal(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}
