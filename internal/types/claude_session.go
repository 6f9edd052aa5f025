package types

import "time"

// ClaudeSessionRecord ties a terminal to the Claude CLI session id captured
// from its output, keyed by working directory so a conversation can be
// resumed there after a daemon restart.
type ClaudeSessionRecord struct {
	TerminalID string    `json:"terminal_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Cwd        string    `json:"cwd"`
	Title      string    `json:"title,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func CloneClaudeSessionRecord(in *ClaudeSessionRecord) *ClaudeSessionRecord {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
