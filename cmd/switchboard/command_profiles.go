package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	switchclient "switchboard/internal/client"
)

type ProfilesCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewProfilesCommand(stdout, stderr io.Writer, newClient clientFactory) *ProfilesCommand {
	return &ProfilesCommand{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newClient,
	}
}

func (c *ProfilesCommand) Run(args []string) error {
	if len(args) == 0 {
		return errors.New("profiles requires a subcommand: list, add, rm, token, use, login, or best")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.runList(rest)
	case "add":
		return c.runAdd(rest)
	case "rm", "remove":
		return c.runRemove(rest)
	case "token":
		return c.runToken(rest)
	case "use":
		return c.runUse(rest)
	case "login":
		return c.runLogin(rest)
	case "best":
		return c.runBest(rest)
	default:
		return fmt.Errorf("unknown profiles subcommand: %s", sub)
	}
}

func (c *ProfilesCommand) connect(ctx context.Context) (commandClient, error) {
	client, err := c.newClient()
	if err != nil {
		return nil, err
	}
	if err := client.EnsureDaemon(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *ProfilesCommand) runList(args []string) error {
	fs := flag.NewFlagSet("profiles list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	resp, err := client.ListProfiles(ctx)
	if err != nil {
		return err
	}
	printProfiles(c.stdout, resp)
	return nil
}

func (c *ProfilesCommand) runAdd(args []string) error {
	fs := flag.NewFlagSet("profiles add", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	id := fs.String("id", "", "profile id (allocated when empty)")
	name := fs.String("name", "", "display name")
	token := fs.String("token", "", "oauth token")
	email := fs.String("email", "", "account email")
	configDir := fs.String("config-dir", "", "dedicated CLAUDE_CONFIG_DIR")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	profile, err := client.CreateProfile(ctx, switchclient.CreateProfileRequest{
		ID:         *id,
		Name:       *name,
		OAuthToken: *token,
		Email:      *email,
		ConfigDir:  *configDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, profile.ID)
	if !profile.HasToken {
		fmt.Fprintf(c.stderr, "profile %s has no token yet; run: switchboard profiles login %s\n", profile.ID, profile.ID)
	}
	return nil
}

func (c *ProfilesCommand) runRemove(args []string) error {
	fs := flag.NewFlagSet("profiles rm", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("profiles rm requires a profile id")
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteProfile(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

func (c *ProfilesCommand) runToken(args []string) error {
	fs := flag.NewFlagSet("profiles token", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email to record with the token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("profiles token requires a profile id and a token")
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	req := switchclient.SetProfileTokenRequest{Token: fs.Arg(1), Email: *email}
	if err := client.SetProfileToken(ctx, fs.Arg(0), req); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

func (c *ProfilesCommand) runUse(args []string) error {
	fs := flag.NewFlagSet("profiles use", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("profiles use requires a profile id")
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	if err := client.ActivateProfile(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

func (c *ProfilesCommand) runLogin(args []string) error {
	fs := flag.NewFlagSet("profiles login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("profiles login requires a profile id")
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	term, err := client.StartLogin(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, term.ID)
	fmt.Fprintf(c.stderr, "login terminal opened; interact with it via: switchboard tail --follow %s\n", term.ID)
	return nil
}

func (c *ProfilesCommand) runBest(args []string) error {
	fs := flag.NewFlagSet("profiles best", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	exclude := fs.String("exclude", "", "profile id to exclude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	profile, err := client.BestProfile(ctx, *exclude)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Fprintln(c.stdout, "no profile available")
		return nil
	}
	fmt.Fprintln(c.stdout, profile.ID)
	return nil
}
