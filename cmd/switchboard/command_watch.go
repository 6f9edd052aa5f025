package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type WatchCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
	version   string
}

func NewWatchCommand(stdout, stderr io.Writer, newClient clientFactory, version string) *WatchCommand {
	return &WatchCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
		version:   version,
	}
}

// Run streams daemon events as JSON lines until interrupted. Watch is a
// long-lived consumer, so it insists on a daemon of its own version.
func (c *WatchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	restartDaemon := fs.Bool("restart-daemon", false, "restart daemon if version mismatch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemonVersion(ctx, c.version, *restartDaemon); err != nil {
		return err
	}

	ch, cancel, err := client.EventStream(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	encoder := json.NewEncoder(c.stdout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-ch:
			if !open {
				return nil
			}
			if err := encoder.Encode(event); err != nil {
				return err
			}
		}
	}
}
