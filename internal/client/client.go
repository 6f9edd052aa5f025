package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"syscall"
	"time"

	"switchboard/internal/config"
	"switchboard/internal/types"
)

// Client talks to a local switchboard daemon over its HTTP API. The
// bearer token is read lazily from the token file the daemon writes at
// startup, so a client created before the daemon still authenticates
// once the daemon is up.
type Client struct {
	baseURL   string
	tokenPath string
	token     string
	http      *http.Client
}

func New() (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   cfg.DaemonBaseURL(),
		tokenPath: tokenPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	_ = c.loadToken()
	return c, nil
}

func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListTerminals(ctx context.Context) ([]*types.Terminal, error) {
	var resp TerminalsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/terminals", nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Terminals, nil
}

func (c *Client) OpenTerminal(ctx context.Context, req OpenTerminalRequest) (*types.Terminal, error) {
	var term types.Terminal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/terminals", req, true, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (c *Client) GetTerminal(ctx context.Context, id string) (*types.Terminal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("terminal id is required")
	}
	var term types.Terminal
	if err := c.doJSON(ctx, http.MethodGet, "/v1/terminals/"+id, nil, true, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (c *Client) CloseTerminal(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("terminal id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v1/terminals/"+id, nil, true, nil)
}

// SendInput writes data to the terminal's stdin verbatim. Callers append
// their own newline when they want the shell to run the input.
func (c *Client) SendInput(ctx context.Context, id, data string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("terminal id is required")
	}
	req := TerminalInputRequest{Data: data}
	return c.doJSON(ctx, http.MethodPost, "/v1/terminals/"+id+"/input", req, true, nil)
}

func (c *Client) TerminalOutput(ctx context.Context, id string, lines int) (*TerminalOutputResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("terminal id is required")
	}
	path := fmt.Sprintf("/v1/terminals/%s/output?lines=%d", id, lines)
	var resp TerminalOutputResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) InvokeAgent(ctx context.Context, id string, req InvokeAgentRequest) (*types.Terminal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("terminal id is required")
	}
	var term types.Terminal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/terminals/"+id+"/claude", req, true, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (c *Client) ResumeAgent(ctx context.Context, id string, req ResumeSessionRequest) (*types.Terminal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("terminal id is required")
	}
	var term types.Terminal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/terminals/"+id+"/resume", req, true, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (c *Client) SwitchProfile(ctx context.Context, id, profileID string) (*SwitchResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("terminal id is required")
	}
	req := SwitchProfileRequest{ProfileID: strings.TrimSpace(profileID)}
	var result SwitchResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/terminals/"+id+"/switch", req, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListProfiles(ctx context.Context) (*ProfileListResponse, error) {
	var resp ProfileListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/profiles", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateProfile(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodPost, "/v1/profiles", req, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (*Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("profile id is required")
	}
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/v1/profiles/"+id, nil, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("profile id is required")
	}
	var profile Profile
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/profiles/"+id, req, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("profile id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v1/profiles/"+id, nil, true, nil)
}

func (c *Client) SetProfileToken(ctx context.Context, id string, req SetProfileTokenRequest) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("profile id is required")
	}
	return c.doJSON(ctx, http.MethodPut, "/v1/profiles/"+id+"/token", req, true, nil)
}

func (c *Client) ActivateProfile(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("profile id is required")
	}
	return c.doJSON(ctx, http.MethodPost, "/v1/profiles/"+id+"/activate", nil, true, nil)
}

// StartLogin opens a login terminal for the profile and returns it. The
// daemon scans the terminal's output and stores the token on the profile
// once the interactive login completes.
func (c *Client) StartLogin(ctx context.Context, id string) (*types.Terminal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("profile id is required")
	}
	var term types.Terminal
	if err := c.doJSON(ctx, http.MethodPost, "/v1/profiles/"+id+"/login", nil, true, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

// BestProfile asks the daemon which profile it would switch to next. A
// nil result means every candidate is rate limited or credential-less.
func (c *Client) BestProfile(ctx context.Context, excludeID string) (*Profile, error) {
	path := "/v1/profiles/best"
	if trimmed := strings.TrimSpace(excludeID); trimmed != "" {
		path += "?exclude=" + url.QueryEscape(trimmed)
	}
	var resp BestProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (c *Client) AutoSwitchSettings(ctx context.Context) (*types.AutoSwitchSettings, error) {
	var settings types.AutoSwitchSettings
	if err := c.doJSON(ctx, http.MethodGet, "/v1/settings/autoswitch", nil, true, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) SetAutoSwitch(ctx context.Context, settings types.AutoSwitchSettings) (*types.AutoSwitchSettings, error) {
	var resp types.AutoSwitchSettings
	if err := c.doJSON(ctx, http.MethodPut, "/v1/settings/autoswitch", settings, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EnsureDaemon(ctx context.Context) error {
	return c.ensureDaemon(ctx, "", false)
}

func (c *Client) EnsureDaemonVersion(ctx context.Context, expectedVersion string, restart bool) error {
	return c.ensureDaemon(ctx, expectedVersion, restart)
}

func (c *Client) ShutdownDaemon(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/shutdown", nil, true, nil)
}

func (c *Client) ensureDaemon(ctx context.Context, expectedVersion string, restart bool) error {
	resp, err := c.Health(ctx)
	if err == nil && resp.OK {
		if expectedVersion == "" || resp.Version == expectedVersion {
			return nil
		}
		if !restart {
			return fmt.Errorf("daemon version mismatch: %s (expected %s)", resp.Version, expectedVersion)
		}
		if err := c.ShutdownDaemon(ctx); err != nil {
			// Daemons predating the shutdown route answer 404; fall
			// back to signaling the reported pid.
			apiErr := asAPIError(err)
			if apiErr == nil || apiErr.StatusCode != http.StatusNotFound {
				return err
			}
			if resp.PID <= 0 {
				return err
			}
			if killErr := killProcess(resp.PID); killErr != nil {
				return fmt.Errorf("failed to stop stale daemon (pid %d): %w", resp.PID, killErr)
			}
		}
		shutdownDeadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(shutdownDeadline) {
			if _, err := c.Health(ctx); err != nil {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	if err := StartBackgroundDaemon(); err != nil {
		return err
	}

	deadline := time.Now().Add(4 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := c.Health(ctx)
		if err == nil && resp.OK {
			if expectedVersion == "" || resp.Version == expectedVersion {
				// A fresh daemon may have minted a new token.
				_ = c.loadToken()
				return nil
			}
			lastErr = fmt.Errorf("daemon version mismatch: %s (expected %s)", resp.Version, expectedVersion)
		} else {
			lastErr = err
		}
		time.Sleep(150 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("daemon not healthy after start")
	}
	return lastErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		if err := c.ensureToken(); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ensureToken() error {
	if strings.TrimSpace(c.token) == "" {
		if err := c.loadToken(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.token) == "" {
		return errors.New("auth token not found; is the daemon running?")
	}
	return nil
}

func (c *Client) loadToken() error {
	if c.tokenPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.token = ""
			return nil
		}
		return err
	}
	c.token = strings.TrimSpace(string(data))
	return nil
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

var killProcess = terminateProcess

func terminateProcess(pid int) error {
	if pid <= 0 {
		return errors.New("invalid pid")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		return proc.Kill()
	}
	return proc.Signal(syscall.SIGTERM)
}
