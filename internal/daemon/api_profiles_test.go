package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"switchboard/internal/types"
)

func TestAPIProfileCRUD(t *testing.T) {
	fx := newAPIFixture(t)

	initial := decodeAs[ProfileListResponse](t, fx.request(http.MethodGet, "/v1/profiles", nil, http.StatusOK))
	if len(initial.Profiles) != 1 || !initial.Profiles[0].IsDefault {
		t.Fatalf("expected only the default profile initially, got %+v", initial.Profiles)
	}
	if initial.ActiveProfileID != types.DefaultProfileID {
		t.Fatalf("expected default active, got %q", initial.ActiveProfileID)
	}

	raw := fx.request(http.MethodPost, "/v1/profiles",
		CreateProfileRequest{ID: "p1", Name: "One", OAuthToken: "sk-ant-oat01-crudtoken1"}, http.StatusCreated)
	created := decodeAs[ProfileView](t, raw)
	if created.ID != "p1" || !created.HasToken {
		t.Fatalf("unexpected created profile: %+v", created)
	}
	var leak map[string]any
	if err := json.Unmarshal(raw, &leak); err != nil {
		t.Fatalf("decode raw profile: %v", err)
	}
	if _, ok := leak["oauth_token"]; ok {
		t.Fatalf("stored token must not appear in responses: %s", raw)
	}

	fx.request(http.MethodPost, "/v1/profiles",
		CreateProfileRequest{ID: "p1", Name: "Dup"}, http.StatusConflict)

	allocated := decodeAs[ProfileView](t, fx.request(http.MethodPost, "/v1/profiles",
		CreateProfileRequest{Name: "Auto"}, http.StatusCreated))
	if allocated.ID == "" {
		t.Fatalf("expected allocated profile id")
	}

	got := decodeAs[ProfileView](t, fx.request(http.MethodGet, "/v1/profiles/p1", nil, http.StatusOK))
	if got.Name != "One" {
		t.Fatalf("expected name One, got %q", got.Name)
	}

	name := "Renamed"
	email := "one@example.com"
	patched := decodeAs[ProfileView](t, fx.request(http.MethodPatch, "/v1/profiles/p1",
		UpdateProfileRequest{Name: &name, Email: &email}, http.StatusOK))
	if patched.Name != "Renamed" || patched.Email != "one@example.com" {
		t.Fatalf("unexpected patched profile: %+v", patched)
	}
	if !patched.HasToken {
		t.Fatalf("patch must not drop the stored token")
	}

	fx.request(http.MethodPatch, "/v1/profiles/ghost", UpdateProfileRequest{Name: &name}, http.StatusNotFound)

	fx.request(http.MethodDelete, "/v1/profiles/"+types.DefaultProfileID, nil, http.StatusBadRequest)
	fx.request(http.MethodDelete, "/v1/profiles/p1", nil, http.StatusOK)
	fx.request(http.MethodGet, "/v1/profiles/p1", nil, http.StatusNotFound)
}

func TestAPIProfileTokenAndActivate(t *testing.T) {
	fx := newAPIFixture(t)
	fx.addProfile("p1", "One", "")

	fx.request(http.MethodPut, "/v1/profiles/p1/token",
		SetProfileTokenRequest{Token: "sk-ant-oat01-puttoken01", Email: "one@example.com"}, http.StatusOK)
	token, ok, err := fx.repo.Profiles().GetToken(context.Background(), "p1")
	if err != nil || !ok || token != "sk-ant-oat01-puttoken01" {
		t.Fatalf("token not stored: %q ok=%v err=%v", token, ok, err)
	}

	fx.request(http.MethodPut, "/v1/profiles/"+types.DefaultProfileID+"/token",
		SetProfileTokenRequest{Token: "sk-ant-oat01-nope"}, http.StatusBadRequest)
	fx.request(http.MethodPut, "/v1/profiles/p1/token",
		SetProfileTokenRequest{Token: "   "}, http.StatusBadRequest)
	fx.request(http.MethodPut, "/v1/profiles/ghost/token",
		SetProfileTokenRequest{Token: "sk-ant-oat01-ghost001"}, http.StatusNotFound)

	fx.request(http.MethodPost, "/v1/profiles/p1/activate", nil, http.StatusOK)
	list := decodeAs[ProfileListResponse](t, fx.request(http.MethodGet, "/v1/profiles", nil, http.StatusOK))
	if list.ActiveProfileID != "p1" {
		t.Fatalf("expected p1 active, got %q", list.ActiveProfileID)
	}

	fx.request(http.MethodPost, "/v1/profiles/ghost/activate", nil, http.StatusNotFound)
}

func TestAPIBestProfile(t *testing.T) {
	fx := newAPIFixture(t)
	fx.addProfile("p1", "One", "sk-ant-oat01-besttoken1")
	fx.addProfile("p2", "Two", "sk-ant-oat01-besttoken2")

	best := decodeAs[BestProfileResponse](t, fx.request(http.MethodGet,
		"/v1/profiles/best?exclude=p1", nil, http.StatusOK))
	if best.Profile == nil || best.Profile.ID != "p2" {
		t.Fatalf("expected p2 as best candidate, got %+v", best.Profile)
	}

	if _, err := fx.repo.RateLimits().Record(context.Background(), "p2", "3pm"); err != nil {
		t.Fatalf("record rate limit: %v", err)
	}
	limited := decodeAs[BestProfileResponse](t, fx.request(http.MethodGet,
		"/v1/profiles/best?exclude=p1", nil, http.StatusOK))
	if limited.Profile != nil {
		t.Fatalf("expected no candidate inside cooldown, got %+v", limited.Profile)
	}
}

func TestAPIProfileLogin(t *testing.T) {
	fx := newAPIFixture(t)
	fx.addProfile("p1", "One", "")

	term := decodeAs[types.Terminal](t, fx.request(http.MethodPost,
		"/v1/profiles/p1/login", nil, http.StatusCreated))
	if !strings.HasPrefix(term.ID, "claude-login-p1-") {
		t.Fatalf("unexpected login terminal id %q", term.ID)
	}
	if term.Title != "Claude login: One" {
		t.Fatalf("unexpected login terminal title %q", term.Title)
	}
	if term.Mode != types.TerminalModeClaude {
		t.Fatalf("expected claude mode, got %q", term.Mode)
	}

	fx.request(http.MethodPost, "/v1/profiles/ghost/login", nil, http.StatusNotFound)
}

func TestAPIAutoSwitchSettings(t *testing.T) {
	fx := newAPIFixture(t)

	defaults := decodeAs[types.AutoSwitchSettings](t, fx.request(http.MethodGet,
		"/v1/settings/autoswitch", nil, http.StatusOK))
	if !defaults.Enabled || !defaults.AutoSwitchOnRateLimit {
		t.Fatalf("expected permissive defaults, got %+v", defaults)
	}

	fx.request(http.MethodPut, "/v1/settings/autoswitch",
		types.AutoSwitchSettings{Enabled: false, AutoSwitchOnRateLimit: false}, http.StatusOK)
	updated := decodeAs[types.AutoSwitchSettings](t, fx.request(http.MethodGet,
		"/v1/settings/autoswitch", nil, http.StatusOK))
	if updated.Enabled || updated.AutoSwitchOnRateLimit {
		t.Fatalf("expected settings persisted, got %+v", updated)
	}

	fx.request(http.MethodDelete, "/v1/settings/autoswitch", nil, http.StatusMethodNotAllowed)
}
