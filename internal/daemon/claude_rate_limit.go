package daemon

import (
	"regexp"
	"strings"
)

// Rate-limit notices vary by CLI build. Known shapes:
//
//	Claude usage limit reached. Your limit will reset at 3am (Asia/Shanghai).
//	5-hour limit reached ∙ resets 3am
//	You've reached your usage limit · try again at 7:30pm
//
// The captured reset value stays an opaque string: it is compared for
// equality during dedup and shown to the user, never parsed as a timestamp.
var rateLimitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)usage limit reached[^\n]*?resets?\s+(?:at\s+)?([^\r\n|]+)`),
	regexp.MustCompile(`(?i)limit reached\s*[∙·•|]+\s*resets\s+(?:at\s+)?([^\r\n|]+)`),
	regexp.MustCompile(`(?i)(?:usage|rate)[ -]limit[^\n]*?try again\s+(?:at\s+|after\s+)?([^\r\n|]+)`),
}

// detectRateLimitReset finds the newest reset notice in the text. Scans run
// over a rolling output window, so earlier notices may still be present and
// the last occurrence is the current state. A notice wrapped across
// terminal lines is caught on the unwrapped variant.
func detectRateLimitReset(clean string) (string, bool) {
	if !strings.Contains(strings.ToLower(clean), "limit") {
		return "", false
	}
	for _, variant := range []string{clean, unwrapOutput(clean)} {
		best := -1
		reset := ""
		for _, pattern := range rateLimitPatterns {
			for _, match := range pattern.FindAllStringSubmatchIndex(variant, -1) {
				if len(match) < 4 || match[2] < 0 {
					continue
				}
				if candidate := cleanResetString(variant[match[2]:match[3]]); candidate != "" && match[0] > best {
					best = match[0]
					reset = candidate
				}
			}
		}
		if best >= 0 {
			return reset, true
		}
		if !strings.ContainsAny(clean, "\r\n") {
			break
		}
	}
	return "", false
}

func cleanResetString(raw string) string {
	reset := strings.TrimSpace(raw)
	reset = strings.TrimRight(reset, ".!,∙·• ")
	return strings.TrimSpace(reset)
}
