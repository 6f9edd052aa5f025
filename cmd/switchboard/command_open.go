package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	switchclient "switchboard/internal/client"
)

type OpenCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewOpenCommand(stdout, stderr io.Writer, newClient clientFactory) *OpenCommand {
	return &OpenCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *OpenCommand) Run(args []string) error {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	cwd := fs.String("cwd", "", "working directory for the shell")
	title := fs.String("title", "", "terminal title")
	shell := fs.String("shell", "", "shell override")
	var envs stringList
	fs.Var(&envs, "env", "environment variable KEY=VALUE (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}

	term, err := client.OpenTerminal(ctx, switchclient.OpenTerminalRequest{
		Cwd:   *cwd,
		Title: *title,
		Shell: *shell,
		Env:   envs,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, term.ID)
	return nil
}
