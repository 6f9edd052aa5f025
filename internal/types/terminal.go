package types

import "time"

// TerminalMode says which agent CLI, if any, is the foreground process of a
// terminal. CapturedSessionID is only meaningful while the mode is
// TerminalModeClaude and is cleared on every fresh (non-resumed) launch.
type TerminalMode string

const (
	TerminalModeIdle     TerminalMode = "idle"
	TerminalModeClaude   TerminalMode = "claude"
	TerminalModeOpenCode TerminalMode = "opencode"
)

func (m TerminalMode) Active() bool {
	return m != "" && m != TerminalModeIdle
}

type Terminal struct {
	ID                string       `json:"id"`
	Title             string       `json:"title,omitempty"`
	Cwd               string       `json:"cwd,omitempty"`
	PID               int          `json:"pid,omitempty"`
	Mode              TerminalMode `json:"mode"`
	ActiveProfileID   string       `json:"active_profile_id,omitempty"`
	CapturedSessionID string       `json:"captured_session_id,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	AgentStartedAt    *time.Time   `json:"agent_started_at,omitempty"`
	LastOutputAt      *time.Time   `json:"last_output_at,omitempty"`
	Exited            bool         `json:"exited,omitempty"`
}

func CloneTerminal(in *Terminal) *Terminal {
	if in == nil {
		return nil
	}
	out := *in
	if in.AgentStartedAt != nil {
		t := *in.AgentStartedAt
		out.AgentStartedAt = &t
	}
	if in.LastOutputAt != nil {
		t := *in.LastOutputAt
		out.LastOutputAt = &t
	}
	return &out
}

// OutputChunk is one slice of terminal output as it arrived, fanned out to
// stream subscribers.
type OutputChunk struct {
	TerminalID string    `json:"terminal_id"`
	Data       string    `json:"data"`
	At         time.Time `json:"at"`
}
