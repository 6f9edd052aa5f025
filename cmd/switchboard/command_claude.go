package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	switchclient "switchboard/internal/client"
)

type ClaudeCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewClaudeCommand(stdout, stderr io.Writer, newClient clientFactory) *ClaudeCommand {
	return &ClaudeCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *ClaudeCommand) Run(args []string) error {
	fs := flag.NewFlagSet("claude", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	profile := fs.String("profile", "", "profile id to launch under")
	agent := fs.String("agent", "", "agent to launch: claude|opencode")
	resume := fs.Bool("resume", false, "resume the most recent captured session")
	session := fs.String("session", "", "session id to resume (implies --resume)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("claude requires a terminal id")
	}
	id := fs.Arg(0)
	extraArgs := fs.Args()[1:]
	if len(extraArgs) > 0 && extraArgs[0] == "--" {
		extraArgs = extraArgs[1:]
	}

	ctx := context.Background()
	client, err := c.newClient()
	if err != nil {
		return err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return err
	}

	if *resume || *session != "" {
		if len(extraArgs) > 0 {
			return errors.New("extra arguments are not supported with --resume")
		}
		term, err := client.ResumeAgent(ctx, id, switchclient.ResumeSessionRequest{
			ProfileID: *profile,
			SessionID: *session,
		})
		if err != nil {
			return err
		}
		c.printResult(term.ActiveProfileID)
		return nil
	}

	term, err := client.InvokeAgent(ctx, id, switchclient.InvokeAgentRequest{
		Agent:     *agent,
		ProfileID: *profile,
		Args:      extraArgs,
	})
	if err != nil {
		return err
	}
	c.printResult(term.ActiveProfileID)
	return nil
}

func (c *ClaudeCommand) printResult(profileID string) {
	if profileID == "" {
		fmt.Fprintln(c.stdout, "ok")
		return
	}
	fmt.Fprintf(c.stdout, "ok profile=%s\n", profileID)
}
