package daemon

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"switchboard/internal/types"
)

func TestNotificationContent(t *testing.T) {
	cases := []struct {
		name       string
		event      types.UIEvent
		wantTitle  string
		wantInBody string
		noteworthy bool
	}{
		{
			name: "rate limit with auto switch",
			event: types.UIEvent{Name: types.EventClaudeRateLimit, RateLimit: &types.RateLimitEvent{
				ResetTime:            "6pm",
				SuggestedProfileName: "Backup",
				AutoSwitchEnabled:    true,
			}},
			wantTitle:  "Claude rate limited",
			wantInBody: "Switching to Backup.",
			noteworthy: true,
		},
		{
			name: "rate limit with suggestion only",
			event: types.UIEvent{Name: types.EventClaudeRateLimit, RateLimit: &types.RateLimitEvent{
				ResetTime:            "6pm",
				SuggestedProfileName: "Backup",
			}},
			wantTitle:  "Claude rate limited",
			wantInBody: "Backup is available.",
			noteworthy: true,
		},
		{
			name: "rate limit without candidates",
			event: types.UIEvent{Name: types.EventClaudeRateLimit, RateLimit: &types.RateLimitEvent{
				ResetTime: "3am",
			}},
			wantTitle:  "Claude rate limited",
			wantInBody: "No alternate profile available.",
			noteworthy: true,
		},
		{
			name:       "rate limit without payload",
			event:      types.UIEvent{Name: types.EventClaudeRateLimit},
			noteworthy: false,
		},
		{
			name: "token captured with email",
			event: types.UIEvent{Name: types.EventClaudeOAuthToken, OAuthToken: &types.OAuthTokenEvent{
				ProfileID: "p1",
				Email:     "dev@example.com",
				Success:   true,
			}},
			wantTitle:  "Claude login captured",
			wantInBody: "dev@example.com",
			noteworthy: true,
		},
		{
			name: "token capture failed",
			event: types.UIEvent{Name: types.EventClaudeOAuthToken, OAuthToken: &types.OAuthTokenEvent{
				Message: "token not associated with a profile",
			}},
			wantTitle:  "Claude login detected",
			wantInBody: "not associated",
			noteworthy: true,
		},
		{
			name: "failed switch",
			event: types.UIEvent{Name: types.EventProfileSwitched, Switch: &types.SwitchEvent{
				ProfileID: "p2",
				Error:     "profile not found",
			}},
			wantTitle:  "Profile switch failed",
			wantInBody: "profile not found",
			noteworthy: true,
		},
		{
			name: "successful switch is quiet",
			event: types.UIEvent{Name: types.EventProfileSwitched, Switch: &types.SwitchEvent{
				ProfileID: "p2",
				Success:   true,
			}},
			noteworthy: false,
		},
		{
			name:       "terminal lifecycle is quiet",
			event:      types.UIEvent{Name: types.EventTerminalOpened, TerminalID: "t1"},
			noteworthy: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, body, noteworthy := notificationContent(tc.event)
			if noteworthy != tc.noteworthy {
				t.Fatalf("noteworthy = %v, want %v", noteworthy, tc.noteworthy)
			}
			if !tc.noteworthy {
				return
			}
			if title != tc.wantTitle {
				t.Fatalf("title = %q, want %q", title, tc.wantTitle)
			}
			if !strings.Contains(body, tc.wantInBody) {
				t.Fatalf("body %q does not mention %q", body, tc.wantInBody)
			}
		})
	}
}

type fakeSink struct {
	mu     sync.Mutex
	titles []string
}

func (s *fakeSink) Method() NotificationMethod { return NotificationMethodBell }

func (s *fakeSink) Notify(ctx context.Context, title, body string) error {
	s.mu.Lock()
	s.titles = append(s.titles, title)
	s.mu.Unlock()
	return nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

func TestDesktopNotifierDispatchesNoteworthyEvents(t *testing.T) {
	sink := &fakeSink{}
	notifier := NewDesktopNotifier("bell", true, nil)
	notifier.sinks[NotificationMethodBell] = sink

	hub := newEventHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		notifier.Run(ctx, hub)
		close(done)
	}()

	// Subscription is synchronous inside Run; give the goroutine a beat.
	waitForCondition(t, time.Second, func() bool { return hub.Count() == 1 }, "notifier never subscribed")

	hub.Publish(types.UIEvent{Name: types.EventTerminalOpened, TerminalID: "quiet"})
	hub.Publish(types.UIEvent{Name: types.EventClaudeRateLimit, RateLimit: &types.RateLimitEvent{ResetTime: "6pm"}})

	waitForCondition(t, 2*time.Second, func() bool { return sink.count() == 1 }, "noteworthy event never dispatched")
	if got := sink.count(); got != 1 {
		t.Fatalf("expected exactly one notification, got %d", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("notifier did not stop on cancel")
	}
}

func TestDesktopNotifierDisabled(t *testing.T) {
	notifier := NewDesktopNotifier("bell", false, nil)
	hub := newEventHub()

	done := make(chan struct{})
	go func() {
		notifier.Run(context.Background(), hub)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("disabled notifier should return immediately")
	}
	if hub.Count() != 0 {
		t.Fatalf("disabled notifier must not subscribe")
	}
}
