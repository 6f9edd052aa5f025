package types

import (
	"errors"
	"strings"
	"time"
)

// DefaultProfileID is the fixed id of the built-in profile that relies on
// ambient environment credentials instead of a stored token.
const DefaultProfileID = "default"

type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	OAuthToken string     `json:"oauth_token,omitempty"`
	Email      string     `json:"email,omitempty"`
	ConfigDir  string     `json:"config_dir,omitempty"`
	IsDefault  bool       `json:"is_default,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// HasCredential reports whether the profile can authenticate a CLI launch on
// its own. The default profile always can: it defers to the ambient
// environment.
func (p *Profile) HasCredential() bool {
	if p == nil {
		return false
	}
	if p.IsDefault {
		return true
	}
	return strings.TrimSpace(p.OAuthToken) != "" || strings.TrimSpace(p.ConfigDir) != ""
}

func CloneProfile(in *Profile) *Profile {
	if in == nil {
		return nil
	}
	out := *in
	if in.LastUsedAt != nil {
		t := *in.LastUsedAt
		out.LastUsedAt = &t
	}
	return &out
}

// NormalizeProfile trims and validates a profile record before it is stored.
func NormalizeProfile(in *Profile) (*Profile, error) {
	if in == nil {
		return nil, errors.New("profile is required")
	}
	out := CloneProfile(in)
	out.ID = strings.TrimSpace(out.ID)
	out.Name = strings.TrimSpace(out.Name)
	out.OAuthToken = strings.TrimSpace(out.OAuthToken)
	out.Email = strings.TrimSpace(out.Email)
	out.ConfigDir = strings.TrimSpace(out.ConfigDir)
	if out.ID == "" {
		return nil, errors.New("profile id is required")
	}
	if out.Name == "" {
		out.Name = out.ID
	}
	if out.ID == DefaultProfileID {
		out.IsDefault = true
	}
	if out.IsDefault && out.ID != DefaultProfileID {
		return nil, errors.New("only the built-in default profile may be marked default")
	}
	if out.IsDefault && out.OAuthToken != "" {
		return nil, errors.New("default profile cannot hold a stored token")
	}
	return out, nil
}

type RateLimitRecord struct {
	ProfileID  string    `json:"profile_id"`
	ResetTime  string    `json:"reset_time"`
	RecordedAt time.Time `json:"recorded_at"`
}

func CloneRateLimitRecord(in *RateLimitRecord) *RateLimitRecord {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}

type AutoSwitchSettings struct {
	Enabled               bool `json:"enabled"`
	AutoSwitchOnRateLimit bool `json:"auto_switch_on_rate_limit"`
}

func DefaultAutoSwitchSettings() AutoSwitchSettings {
	return AutoSwitchSettings{
		Enabled:               true,
		AutoSwitchOnRateLimit: true,
	}
}
