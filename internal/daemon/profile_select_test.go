package daemon

import (
	"testing"
	"time"

	"switchboard/internal/types"
)

func TestBestAvailableProfile(t *testing.T) {
	now := time.Now().UTC()
	recent := now.Add(-1 * time.Hour)
	older := now.Add(-24 * time.Hour)
	cooldown := 5 * time.Hour

	usable := &types.Profile{ID: "profile-1", Name: "A", OAuthToken: "sk-ant-oat01-aaaa0000", LastUsedAt: &recent}
	limited := &types.Profile{ID: "profile-2", Name: "B", OAuthToken: "sk-ant-oat01-bbbb0000", LastUsedAt: &older}
	misconfigured := &types.Profile{ID: "profile-3", Name: "C"}
	def := &types.Profile{ID: types.DefaultProfileID, Name: "Default", IsDefault: true}
	profiles := []*types.Profile{def, usable, limited, misconfigured}
	lastLimited := map[string]time.Time{"profile-2": now.Add(-10 * time.Minute)}

	if got := bestAvailableProfile(profiles, lastLimited, cooldown, now, "other"); got == nil || got.ID != "profile-1" {
		t.Fatalf("expected profile-1, got %#v", got)
	}
	// With the only usable profile excluded, the limited and misconfigured
	// ones must not be promoted.
	if got := bestAvailableProfile(profiles, lastLimited, cooldown, now, "profile-1"); got != nil {
		t.Fatalf("expected none, got %#v", got)
	}
	// An expired rate limit no longer disqualifies.
	expired := map[string]time.Time{"profile-2": now.Add(-6 * time.Hour)}
	if got := bestAvailableProfile(profiles, expired, cooldown, now, "profile-1"); got == nil || got.ID != "profile-2" {
		t.Fatalf("expected profile-2 after cooldown, got %#v", got)
	}
}

func TestBestAvailableProfilePrefersRecentlyUsed(t *testing.T) {
	now := time.Now().UTC()
	recent := now.Add(-1 * time.Hour)
	older := now.Add(-48 * time.Hour)

	a := &types.Profile{ID: "profile-1", OAuthToken: "sk-ant-oat01-aaaa0000", LastUsedAt: &older}
	b := &types.Profile{ID: "profile-2", ConfigDir: "/home/dev/.claude-alt", LastUsedAt: &recent}
	c := &types.Profile{ID: "profile-3", OAuthToken: "sk-ant-oat01-cccc0000"}

	got := bestAvailableProfile([]*types.Profile{a, b, c}, nil, time.Hour, now, "")
	if got == nil || got.ID != "profile-2" {
		t.Fatalf("expected most recently used profile-2, got %#v", got)
	}
}
