package agents

import (
	"fmt"
	"strings"
)

const (
	Claude   = "claude"
	OpenCode = "opencode"
)

// Capabilities describes what the integration layer may do with an agent's
// terminal output.
type Capabilities struct {
	CapturesSessionID bool
	CapturesOAuth     bool
	DetectsRateLimit  bool
	SupportsResume    bool
}

type Definition struct {
	Name            string
	Label           string
	EnvCommandVar   string
	DefaultCommand  string
	ResumeFlag      string
	ContinueFlag    string
	LoginSubcommand string
	ExitCommand     string
	Capabilities    Capabilities
}

var registry = []Definition{
	{
		Name:            Claude,
		Label:           "Claude Code",
		EnvCommandVar:   "CLAUDE_CLI_PATH",
		DefaultCommand:  "claude",
		ResumeFlag:      "--resume",
		ContinueFlag:    "--continue",
		LoginSubcommand: "setup-token",
		ExitCommand:     "/exit",
		Capabilities: Capabilities{
			CapturesSessionID: true,
			CapturesOAuth:     true,
			DetectsRateLimit:  true,
			SupportsResume:    true,
		},
	},
	{
		Name:           OpenCode,
		Label:          "OpenCode",
		EnvCommandVar:  "OPENCODE_CLI_PATH",
		DefaultCommand: "opencode",
		ExitCommand:    "/exit",
	},
}

var registryByName = buildByName(registry)

func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func Lookup(name string) (Definition, bool) {
	def, ok := registryByName[Normalize(name)]
	return def, ok
}

// Resolve maps a requested agent name to its definition, defaulting to
// claude for an empty name; unknown names are rejected.
func Resolve(name string) (Definition, error) {
	key := Normalize(name)
	if key == "" {
		key = Claude
	}
	def, ok := registryByName[key]
	if !ok {
		return Definition{}, fmt.Errorf("unknown agent: %s", name)
	}
	return def, nil
}

// ResumeArgs builds the resume invocation suffix: with a session id when one
// is known, otherwise the continue-most-recent form.
func (d Definition) ResumeArgs(sessionID string) []string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" && d.ResumeFlag != "" {
		return []string{d.ResumeFlag, sessionID}
	}
	if d.ContinueFlag != "" {
		return []string{d.ContinueFlag}
	}
	return nil
}

func buildByName(defs []Definition) map[string]Definition {
	out := make(map[string]Definition, len(defs))
	for _, def := range defs {
		name := Normalize(def.Name)
		if name == "" {
			continue
		}
		out[name] = def
	}
	return out
}
