package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"switchboard/internal/logging"
	"switchboard/internal/types"
)

type NotificationMethod string

const (
	NotificationMethodAuto       NotificationMethod = "auto"
	NotificationMethodDunstify   NotificationMethod = "dunstify"
	NotificationMethodNotifySend NotificationMethod = "notify-send"
	NotificationMethodBell       NotificationMethod = "bell"
)

const notifyTimeout = 5 * time.Second

type NotificationSink interface {
	Method() NotificationMethod
	Notify(ctx context.Context, title, body string) error
}

type notifySendSink struct{}

func (notifySendSink) Method() NotificationMethod { return NotificationMethodNotifySend }

func (notifySendSink) Notify(ctx context.Context, title, body string) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return err
	}
	return exec.CommandContext(ctx, "notify-send", title, body).Run()
}

type dunstifySink struct{}

func (dunstifySink) Method() NotificationMethod { return NotificationMethodDunstify }

func (dunstifySink) Notify(ctx context.Context, title, body string) error {
	if _, err := exec.LookPath("dunstify"); err != nil {
		return err
	}
	return exec.CommandContext(ctx, "dunstify", title, body).Run()
}

type bellSink struct{}

func (bellSink) Method() NotificationMethod { return NotificationMethodBell }

func (bellSink) Notify(ctx context.Context, title, body string) error {
	_, err := fmt.Fprint(os.Stdout, "\a")
	return err
}

func defaultNotificationSinks() []NotificationSink {
	return []NotificationSink{
		dunstifySink{},
		notifySendSink{},
		bellSink{},
	}
}

// DesktopNotifier relays noteworthy hub events to the desktop. It consumes
// its own hub subscription so notification latency never feeds back into the
// output-processing path.
type DesktopNotifier struct {
	method  NotificationMethod
	enabled bool
	sinks   map[NotificationMethod]NotificationSink
	logger  logging.Logger
}

func NewDesktopNotifier(method string, enabled bool, logger logging.Logger) *DesktopNotifier {
	if logger == nil {
		logger = logging.Nop()
	}
	byMethod := map[NotificationMethod]NotificationSink{}
	for _, sink := range defaultNotificationSinks() {
		byMethod[sink.Method()] = sink
	}
	normalized := NotificationMethod(strings.TrimSpace(strings.ToLower(method)))
	if normalized == "" {
		normalized = NotificationMethodAuto
	}
	return &DesktopNotifier{
		method:  normalized,
		enabled: enabled,
		sinks:   byMethod,
		logger:  logger,
	}
}

func (n *DesktopNotifier) Run(ctx context.Context, hub *eventHub) {
	if n == nil || !n.enabled || hub == nil {
		return
	}
	events, cancel := hub.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			title, body, noteworthy := notificationContent(event)
			if !noteworthy {
				continue
			}
			notifyCtx, cancelNotify := context.WithTimeout(ctx, notifyTimeout)
			err := n.dispatch(notifyCtx, title, body)
			cancelNotify()
			if err != nil {
				n.logger.Warn("desktop_notify_failed",
					logging.F("event", string(event.Name)),
					logging.Err(err),
				)
			}
		}
	}
}

func (n *DesktopNotifier) dispatch(ctx context.Context, title, body string) error {
	if n.method == NotificationMethodAuto {
		for _, fallback := range []NotificationMethod{NotificationMethodDunstify, NotificationMethodNotifySend, NotificationMethodBell} {
			sink, ok := n.sinks[fallback]
			if !ok {
				continue
			}
			if err := sink.Notify(ctx, title, body); err == nil {
				return nil
			}
		}
		return errors.New("no notification sink available")
	}
	sink, ok := n.sinks[n.method]
	if !ok {
		return fmt.Errorf("unknown notification method: %s", n.method)
	}
	return sink.Notify(ctx, title, body)
}

// notificationContent decides which hub events deserve a desktop popup and
// how they read.
func notificationContent(event types.UIEvent) (string, string, bool) {
	switch event.Name {
	case types.EventClaudeRateLimit:
		if event.RateLimit == nil {
			return "", "", false
		}
		body := fmt.Sprintf("Limit resets %s.", event.RateLimit.ResetTime)
		switch {
		case event.RateLimit.AutoSwitchEnabled && event.RateLimit.SuggestedProfileName != "":
			body += fmt.Sprintf(" Switching to %s.", event.RateLimit.SuggestedProfileName)
		case event.RateLimit.SuggestedProfileName != "":
			body += fmt.Sprintf(" %s is available.", event.RateLimit.SuggestedProfileName)
		default:
			body += " No alternate profile available."
		}
		return "Claude rate limited", body, true
	case types.EventClaudeOAuthToken:
		if event.OAuthToken == nil {
			return "", "", false
		}
		if event.OAuthToken.Success {
			body := fmt.Sprintf("Token saved to %s.", event.OAuthToken.ProfileID)
			if event.OAuthToken.Email != "" {
				body = fmt.Sprintf("Token for %s saved to %s.", event.OAuthToken.Email, event.OAuthToken.ProfileID)
			}
			return "Claude login captured", body, true
		}
		return "Claude login detected", event.OAuthToken.Message, true
	case types.EventProfileSwitched:
		if event.Switch == nil || event.Switch.Success {
			return "", "", false
		}
		return "Profile switch failed", event.Switch.Error, true
	default:
		return "", "", false
	}
}
