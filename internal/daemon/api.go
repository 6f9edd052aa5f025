package daemon

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"switchboard/internal/logging"
	"switchboard/internal/store"
	"switchboard/internal/types"
)

type API struct {
	Version    string
	Manager    *TerminalManager
	Controller *IntegrationController
	Profiles   store.ProfileStore
	Limits     store.RateLimitStore
	Settings   store.SettingsStore
	Hub        *eventHub
	Shutdown   func(context.Context) error
	Logger     logging.Logger
}

type OpenTerminalRequest struct {
	Cwd   string   `json:"cwd,omitempty"`
	Title string   `json:"title,omitempty"`
	Shell string   `json:"shell,omitempty"`
	Env   []string `json:"env,omitempty"`
}

// TerminalInputRequest carries raw bytes for the terminal's stdin. The
// daemon writes Data verbatim; callers append their own newline.
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

// UpdateProfileRequest is a partial update; nil fields keep their stored
// value. Tokens change only through the dedicated token route.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	ConfigDir *string `json:"config_dir,omitempty"`
}

type SetProfileTokenRequest struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// ProfileView is the wire shape of a profile. The stored token never
// appears in responses; credentials leave the daemon only through the
// injected environment files.
type ProfileView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	ConfigDir  string     `json:"config_dir,omitempty"`
	IsDefault  bool       `json:"is_default,omitempty"`
	HasToken   bool       `json:"has_token"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func newProfileView(p *types.Profile) *ProfileView {
	if p == nil {
		return nil
	}
	return &ProfileView{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		ConfigDir:  p.ConfigDir,
		IsDefault:  p.IsDefault,
		HasToken:   p.IsDefault || strings.TrimSpace(p.OAuthToken) != "",
		CreatedAt:  p.CreatedAt,
		LastUsedAt: p.LastUsedAt,
	}
}

type ProfileListResponse struct {
	Profiles        []*ProfileView `json:"profiles"`
	ActiveProfileID string         `json:"active_profile_id"`
}

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}

type BestProfileResponse struct {
	Profile *ProfileView `json:"profile"`
}

type TerminalListResponse struct {
	Terminals []*types.Terminal `json:"terminals"`
}

type TerminalOutputResponse struct {
	TerminalID string `json:"terminal_id"`
	Output     string `json:"output"`
}

func parseLines(raw string) int {
	if raw == "" {
		return 200
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return 200
	}
	return val
}

// lastLines trims s to its final n lines. A trailing newline does not
// count as an extra line.
func lastLines(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	end := len(s)
	if s[end-1] == '\n' {
		end--
	}
	seen := 0
	for i := end - 1; i >= 0; i-- {
		if s[i] == '\n' {
			seen++
			if seen == n {
				return s[i+1:]
			}
		}
	}
	return s
}

func isFollowRequest(r *http.Request) bool {
	follow := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("follow")))
	return follow == "1" || follow == "true" || follow == "yes"
}
