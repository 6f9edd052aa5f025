package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type TailCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewTailCommand(stdout, stderr io.Writer, newClient clientFactory) *TailCommand {
	return &TailCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *TailCommand) Run(args []string) error {
	fs := flag.NewFlagSet("tail", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	lines := fs.Int("lines", 200, "number of lines to fetch")
	follow := fs.Bool("follow", false, "stream output until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("tail requires a terminal id")
	}
	id := fs.Arg(0)

	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(context.Background()); err != nil {
		return err
	}

	if *follow {
		return c.follow(client, id)
	}

	resp, err := client.TerminalOutput(context.Background(), id, *lines)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.stdout, resp.Output)
	return err
}

func (c *TailCommand) follow(client commandClient, id string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, cancel, err := client.FollowOutput(ctx, id)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, open := <-ch:
			if !open {
				return nil
			}
			if _, err := fmt.Fprint(c.stdout, chunk.Data); err != nil {
				return err
			}
		}
	}
}
