package daemon

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"switchboard/internal/types"
)

func TestAPITerminalLifecycle(t *testing.T) {
	fx := newAPIFixture(t)

	created := decodeAs[types.Terminal](t, fx.request(http.MethodPost, "/v1/terminals",
		OpenTerminalRequest{Cwd: t.TempDir(), Title: "work"}, http.StatusCreated))
	if created.ID == "" {
		t.Fatalf("expected terminal id")
	}
	if created.Mode != types.TerminalModeIdle {
		t.Fatalf("expected idle mode, got %q", created.Mode)
	}
	if created.Title != "work" {
		t.Fatalf("expected title 'work', got %q", created.Title)
	}

	list := decodeAs[TerminalListResponse](t, fx.request(http.MethodGet, "/v1/terminals", nil, http.StatusOK))
	if len(list.Terminals) != 1 || list.Terminals[0].ID != created.ID {
		t.Fatalf("expected the opened terminal in the list, got %+v", list.Terminals)
	}

	fx.request(http.MethodPost, "/v1/terminals/"+created.ID+"/input",
		TerminalInputRequest{Data: "echo hi\n"}, http.StatusOK)

	rt, ok := fx.manager.Get(created.ID)
	if !ok {
		t.Fatalf("terminal missing from manager")
	}
	fx.feed(rt, "alpha\nbravo\ncharlie\n")

	output := decodeAs[TerminalOutputResponse](t, fx.request(http.MethodGet,
		"/v1/terminals/"+created.ID+"/output?lines=2", nil, http.StatusOK))
	if output.Output != "bravo\ncharlie\n" {
		t.Fatalf("expected last two lines, got %q", output.Output)
	}

	got := decodeAs[types.Terminal](t, fx.request(http.MethodGet, "/v1/terminals/"+created.ID, nil, http.StatusOK))
	if got.ID != created.ID {
		t.Fatalf("expected terminal %s, got %s", created.ID, got.ID)
	}

	fx.request(http.MethodDelete, "/v1/terminals/"+created.ID, nil, http.StatusOK)
	fx.request(http.MethodGet, "/v1/terminals/"+created.ID, nil, http.StatusNotFound)
}

func TestAPITerminalValidation(t *testing.T) {
	fx := newAPIFixture(t)

	fx.request(http.MethodGet, "/v1/terminals/nope", nil, http.StatusNotFound)
	fx.request(http.MethodPut, "/v1/terminals", nil, http.StatusMethodNotAllowed)
	fx.request(http.MethodGet, "/v1/terminals/nope/bogus", nil, http.StatusNotFound)

	req, err := http.NewRequest(http.MethodPost, fx.server.URL+"/v1/terminals", strings.NewReader("{broken"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post invalid json: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", resp.StatusCode)
	}
}

func TestAPIInvokeResumeSwitch(t *testing.T) {
	fx := newAPIFixture(t)
	sink := filepath.Join(t.TempDir(), "sink")

	term := decodeAs[types.Terminal](t, fx.request(http.MethodPost, "/v1/terminals",
		OpenTerminalRequest{Cwd: t.TempDir(), Env: []string{"TERM_SINK=" + sink}}, http.StatusCreated))

	invoked := decodeAs[types.Terminal](t, fx.request(http.MethodPost,
		"/v1/terminals/"+term.ID+"/claude", InvokeAgentRequest{}, http.StatusOK))
	if invoked.Mode != types.TerminalModeClaude {
		t.Fatalf("expected claude mode, got %q", invoked.Mode)
	}
	waitForCondition(t, 2*time.Second, func() bool {
		raw, err := os.ReadFile(sink)
		return err == nil && strings.Contains(string(raw), "claude")
	}, "launch command never reached the shell")

	fx.request(http.MethodPost, "/v1/profiles",
		CreateProfileRequest{ID: "p1", Name: "One", OAuthToken: "sk-ant-oat01-apitest01"}, http.StatusCreated)

	result := decodeAs[SwitchResult](t, fx.request(http.MethodPost,
		"/v1/terminals/"+term.ID+"/switch", SwitchProfileRequest{ProfileID: "p1"}, http.StatusOK))
	if !result.Success {
		t.Fatalf("expected switch success, got %+v", result)
	}
	if result.ProfileID != "p1" {
		t.Fatalf("expected profile p1, got %q", result.ProfileID)
	}

	missing := decodeAs[SwitchResult](t, fx.request(http.MethodPost,
		"/v1/terminals/"+term.ID+"/switch", SwitchProfileRequest{ProfileID: "ghost"}, http.StatusOK))
	if missing.Success || missing.Error == "" {
		t.Fatalf("expected failed switch result, got %+v", missing)
	}

	resumed := decodeAs[types.Terminal](t, fx.request(http.MethodPost,
		"/v1/terminals/"+term.ID+"/resume", ResumeSessionRequest{}, http.StatusOK))
	if resumed.Mode != types.TerminalModeClaude {
		t.Fatalf("expected claude mode after resume, got %q", resumed.Mode)
	}
	waitForCondition(t, 2*time.Second, func() bool {
		raw, err := os.ReadFile(sink)
		return err == nil && strings.Contains(string(raw), "claude --continue")
	}, "resume command never reached the shell")

	fx.request(http.MethodPost, "/v1/terminals/ghost/claude", InvokeAgentRequest{}, http.StatusNotFound)
}

func TestAPITerminalOutputFollow(t *testing.T) {
	fx := newAPIFixture(t)

	term := decodeAs[types.Terminal](t, fx.request(http.MethodPost, "/v1/terminals",
		OpenTerminalRequest{Cwd: t.TempDir()}, http.StatusCreated))
	rt, ok := fx.manager.Get(term.ID)
	if !ok {
		t.Fatalf("terminal missing from manager")
	}
	fx.feed(rt, "scrollback before follow\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fx.server.URL+"/v1/terminals/"+term.ID+"/output?follow=1", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("follow output: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	first := waitSSEData(t, lines, 2*time.Second)
	if !strings.Contains(first, "scrollback before follow") {
		t.Fatalf("expected snapshot chunk first, got %q", first)
	}

	fx.feed(rt, "live chunk\n")
	second := waitSSEData(t, lines, 2*time.Second)
	if !strings.Contains(second, "live chunk") {
		t.Fatalf("expected live chunk, got %q", second)
	}
}

// waitSSEData returns the payload of the next `data:` line, skipping
// comments and blank keep-alive lines.
func waitSSEData(t *testing.T, lines <-chan string, timeout time.Duration) string {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before data arrived")
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		case <-deadline:
			t.Fatalf("timed out waiting for SSE data")
		}
	}
}
