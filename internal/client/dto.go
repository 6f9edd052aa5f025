package client

import (
	"time"

	"switchboard/internal/types"
)

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}

type OpenTerminalRequest struct {
	Cwd   string   `json:"cwd,omitempty"`
	Title string   `json:"title,omitempty"`
	Shell string   `json:"shell,omitempty"`
	Env   []string `json:"env,omitempty"`
}

type TerminalInputRequest struct {
	Data string `json:"data"`
}

type InvokeAgentRequest struct {
	Agent     string   `json:"agent,omitempty"`
	ProfileID string   `json:"profile_id,omitempty"`
	Args      []string `json:"args,omitempty"`
}

type ResumeSessionRequest struct {
	ProfileID string `json:"profile_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type SwitchProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

type CreateProfileRequest struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	OAuthToken string `json:"oauth_token,omitempty"`
	Email      string `json:"email,omitempty"`
	ConfigDir  string `json:"config_dir,omitempty"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	ConfigDir *string `json:"config_dir,omitempty"`
}

type SetProfileTokenRequest struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// Profile is the daemon's redacted view of a stored profile. Responses
// never carry tokens; has_token reports whether one is on file.
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	ConfigDir  string     `json:"config_dir,omitempty"`
	IsDefault  bool       `json:"is_default,omitempty"`
	HasToken   bool       `json:"has_token"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type ProfileListResponse struct {
	Profiles        []*Profile `json:"profiles"`
	ActiveProfileID string     `json:"active_profile_id"`
}

type BestProfileResponse struct {
	Profile *Profile `json:"profile"`
}

type TerminalsResponse struct {
	Terminals []*types.Terminal `json:"terminals"`
}

type TerminalOutputResponse struct {
	TerminalID string `json:"terminal_id"`
	Output     string `json:"output"`
}

type SwitchResult struct {
	TerminalID string `json:"terminal_id"`
	ProfileID  string `json:"profile_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}
