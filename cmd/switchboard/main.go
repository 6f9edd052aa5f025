package main

import (
	"fmt"
	"os"
)

const usageText = `switchboard manages shell terminals and Claude account profiles.

Usage:
  switchboard <command> [flags]

Commands:
  daemon     run the daemon
  ps         list terminals
  open       open a terminal
  close      close a terminal
  input      send a line of input to a terminal
  tail       show terminal output
  claude     launch an agent CLI in a terminal
  switch     relaunch a terminal's agent under another profile
  profiles   manage account profiles
  settings   view or change daemon settings
  watch      stream daemon events
  config     print configuration (effective or defaults)
  help       show help

Flags:
  -h, --help   show help

Daemon flags:
  --background    run in background (logs to file)
  --force         stop any running daemon before starting
  --kill          stop any running daemon and exit

Examples:
  switchboard open --cwd ~/src/project
  switchboard claude --profile work t-1a2b
  switchboard switch t-1a2b personal
  switchboard profiles add --id work --name Work --token sk-ant-oat01-...
  switchboard tail --follow t-1a2b
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
