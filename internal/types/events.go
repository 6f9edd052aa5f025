package types

import "time"

type EventName string

const (
	EventClaudeRateLimit  EventName = "claude.rate_limit"
	EventClaudeOAuthToken EventName = "claude.oauth_token"
	EventClaudeSessionID  EventName = "claude.session_id"
	EventTerminalTitle    EventName = "terminal.title"
	EventTerminalOpened   EventName = "terminal.opened"
	EventTerminalClosed   EventName = "terminal.closed"
	EventTerminalExited   EventName = "terminal.exited"
	EventProfileSwitched  EventName = "profile.switched"
)

// UIEvent is the one-way envelope pushed to UI subscribers. Exactly one of
// the payload pointers is set, matching Name.
type UIEvent struct {
	Name       EventName `json:"name"`
	TerminalID string    `json:"terminal_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	RateLimit  *RateLimitEvent  `json:"rate_limit,omitempty"`
	OAuthToken *OAuthTokenEvent `json:"oauth_token,omitempty"`
	SessionID  *SessionIDEvent  `json:"session_id,omitempty"`
	Title      *TitleEvent      `json:"title,omitempty"`
	Switch     *SwitchEvent     `json:"switch,omitempty"`
}

type RateLimitEvent struct {
	ResetTime            string    `json:"reset_time"`
	DetectedAt           time.Time `json:"detected_at"`
	ProfileID            string    `json:"profile_id"`
	SuggestedProfileID   string    `json:"suggested_profile_id,omitempty"`
	SuggestedProfileName string    `json:"suggested_profile_name,omitempty"`
	AutoSwitchEnabled    bool      `json:"auto_switch_enabled"`
}

type OAuthTokenEvent struct {
	ProfileID  string    `json:"profile_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

type SessionIDEvent struct {
	CapturedSessionID string `json:"captured_session_id"`
}

type TitleEvent struct {
	Title string `json:"title"`
}

type SwitchEvent struct {
	ProfileID string `json:"profile_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
