package daemon

import "testing"

func TestDetectRateLimitReset(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"Claude usage limit reached. Your limit will reset at 3am (Asia/Shanghai).", "3am (Asia/Shanghai)"},
		{"5-hour limit reached ∙ resets 3am", "3am"},
		{"usage limit reached|resets 11:30pm", "11:30pm"},
		{"You've hit a rate limit, try again at 2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"},
		{"\x1b[31mClaude usage limit reached. Your limit will reset at 7pm.\x1b[0m", "7pm"},
		{"limit of 200 files reached", ""},
		{"everything is fine", ""},
		{"", ""},
	}
	for _, tc := range tests {
		got, ok := detectRateLimitReset(normalizeOutput(tc.input))
		if tc.expect == "" {
			if ok {
				t.Fatalf("detectRateLimitReset(%q) unexpectedly matched %q", tc.input, got)
			}
			continue
		}
		if !ok || got != tc.expect {
			t.Fatalf("detectRateLimitReset(%q) = %q ok=%v, want %q", tc.input, got, ok, tc.expect)
		}
	}
}

func TestDetectRateLimitResetWrapped(t *testing.T) {
	// The terminal wraps long notices mid-line; the detector tries the
	// unwrapped variant on its own.
	input := "Claude usage limit reached. Your limit\r\nwill reset at 6pm (UTC)."
	got, ok := detectRateLimitReset(normalizeOutput(input))
	if !ok || got != "6pm (UTC)" {
		t.Fatalf("wrapped notice: got %q ok=%v", got, ok)
	}
}

func TestDetectRateLimitResetPrefersNewestNotice(t *testing.T) {
	// The scan window can still hold an older notice above the current
	// one; the later occurrence is the live state.
	input := "Claude usage limit reached. Your limit will reset at 3am.\n" +
		"some other output\n" +
		"Claude usage limit reached. Your limit will reset at 6pm."
	got, ok := detectRateLimitReset(input)
	if !ok || got != "6pm" {
		t.Fatalf("newest notice: got %q ok=%v, want 6pm", got, ok)
	}
}
