package daemon

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Detection patterns run on every output chunk, so the cheap no-match path
// matters more than completeness. All scan functions are pure: same text in,
// same events out, no state.

var (
	oauthTokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bsk-ant-oat01-[A-Za-z0-9_-]{8,}`),
		regexp.MustCompile(`\btok_[A-Za-z0-9_-]{4,}\b`),
	}
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	sessionIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)session[ _-]?id\W{0,3}([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`),
		regexp.MustCompile(`--resume[= ]([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`),
	}

	lineBreaks = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")
)

type scanEventKind string

const (
	scanRateLimit  scanEventKind = "rate_limit"
	scanOAuthToken scanEventKind = "oauth_token"
	scanEmail      scanEventKind = "email"
	scanSessionID  scanEventKind = "session_id"
)

type scanEvent struct {
	Kind  scanEventKind
	Value string
}

// scanOutput runs every detector over one chunk of terminal output and
// returns the recognized events in a fixed order.
func scanOutput(text string) []scanEvent {
	clean := normalizeOutput(text)
	if clean == "" {
		return nil
	}
	var events []scanEvent
	if reset, ok := detectRateLimitReset(clean); ok {
		events = append(events, scanEvent{Kind: scanRateLimit, Value: reset})
	}
	if token, ok := detectOAuthToken(clean); ok {
		events = append(events, scanEvent{Kind: scanOAuthToken, Value: token})
	}
	if email, ok := lastEmail(clean); ok {
		events = append(events, scanEvent{Kind: scanEmail, Value: email})
	}
	if sessionID, ok := detectSessionID(clean); ok {
		events = append(events, scanEvent{Kind: scanSessionID, Value: sessionID})
	}
	return events
}

// normalizeOutput strips ANSI control sequences so patterns see plain text.
// Line structure is preserved; detectors that must survive terminal line
// wrapping additionally scan an unwrapped variant.
func normalizeOutput(text string) string {
	if text == "" {
		return ""
	}
	return ansi.Strip(text)
}

func unwrapOutput(text string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	return lineBreaks.Replace(text)
}

// detectOAuthToken finds a credential token in output that may have been
// wrapped across terminal lines mid-token. The scan window may hold older
// tokens too, so the last occurrence wins.
func detectOAuthToken(clean string) (string, bool) {
	for _, variant := range []string{clean, unwrapOutput(clean)} {
		best := -1
		token := ""
		for _, pattern := range oauthTokenPatterns {
			for _, match := range pattern.FindAllStringIndex(variant, -1) {
				if match[0] > best {
					best = match[0]
					token = variant[match[0]:match[1]]
				}
			}
		}
		if best >= 0 {
			return token, true
		}
		if !strings.ContainsAny(clean, "\r\n") {
			break
		}
	}
	return "", false
}

// lastEmail returns the most recently printed email address, used to
// associate a login email with a captured token by buffer lookback.
func lastEmail(clean string) (string, bool) {
	matches := emailPattern.FindAllString(clean, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}

// detectSessionID picks the newest labeled session id: a resumed terminal
// still shows the previous conversation's id higher up in the window.
func detectSessionID(clean string) (string, bool) {
	for _, variant := range []string{clean, unwrapOutput(clean)} {
		best := -1
		sessionID := ""
		for _, pattern := range sessionIDPatterns {
			for _, match := range pattern.FindAllStringSubmatchIndex(variant, -1) {
				if len(match) < 4 || match[2] < 0 {
					continue
				}
				if match[0] > best {
					best = match[0]
					sessionID = variant[match[2]:match[3]]
				}
			}
		}
		if best >= 0 {
			return strings.ToLower(sessionID), true
		}
		if !strings.ContainsAny(clean, "\r\n") {
			break
		}
	}
	return "", false
}
