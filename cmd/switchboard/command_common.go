package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	switchclient "switchboard/internal/client"
	"switchboard/internal/types"
)

const version = "dev"

func printTerminals(output io.Writer, terminals []*types.Terminal) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tMODE\tPID\tPROFILE\tTITLE")
	for _, term := range terminals {
		mode := string(term.Mode)
		if term.Exited {
			mode = "exited"
		}
		pid := "-"
		if term.PID > 0 {
			pid = fmt.Sprintf("%d", term.PID)
		}
		profile := term.ActiveProfileID
		if profile == "" {
			profile = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", term.ID, mode, pid, profile, term.Title)
	}
	_ = writer.Flush()
}

func printProfiles(output io.Writer, resp *switchclient.ProfileListResponse) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tEMAIL\tTOKEN\tACTIVE")
	for _, profile := range resp.Profiles {
		email := profile.Email
		if email == "" {
			email = "-"
		}
		token := "-"
		if profile.HasToken {
			token = "yes"
		}
		active := ""
		if profile.ID == resp.ActiveProfileID {
			active = "*"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", profile.ID, profile.Name, email, token, active)
	}
	_ = writer.Flush()
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	// No VCS stamp (go install, stripped build): fall back to hashing
	// the binary so version comparisons still mean something.
	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
