package main

import (
	"io"
	"os"
)

type commandRunner interface {
	Run(args []string) error
}

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	newClient  clientFactory
	runDaemon  func(background bool) error
	killDaemon func() error
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:    stdout,
		stderr:    stderr,
		newClient: newSwitchboardClient,
		runDaemon: runDaemonProcess,
		killDaemon: func() error {
			return killDaemonWithFactory(newSwitchboardClient)
		},
		version: buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"daemon":   NewDaemonCommand(wiring.stderr, wiring.runDaemon, wiring.killDaemon),
		"ps":       NewPSCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"open":     NewOpenCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"close":    NewCloseCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"input":    NewInputCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"tail":     NewTailCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"claude":   NewClaudeCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"switch":   NewSwitchCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"profiles": NewProfilesCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"settings": NewSettingsCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"watch":    NewWatchCommand(wiring.stdout, wiring.stderr, wiring.newClient, wiring.version),
		"config":   NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}
