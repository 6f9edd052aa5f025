package daemon

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"switchboard/internal/agents"
	"switchboard/internal/logging"
	"switchboard/internal/store"
	"switchboard/internal/types"
)

// scanWindowBytes bounds the output lookback each scan pass runs over. The
// window spans several redraws so notices split across chunks still match;
// per-terminal value dedup keeps repeats inside the window from firing twice.
const scanWindowBytes = 2048

// loginTerminalPrefix names terminals opened for the credential login flow.
// A token captured in such a terminal is stored on the profile the name
// encodes; tokens appearing anywhere else stay unassociated.
const loginTerminalPrefix = "claude-login-"

// transientCredentialTTL is the fallback removal delay for injected
// credential files whose source-then-delete launch line never ran.
const transientCredentialTTL = time.Minute

type IntegrationConfig struct {
	Manager  *TerminalManager
	Profiles store.ProfileStore
	Limits   store.RateLimitStore
	Settings store.SettingsStore
	Sessions store.ClaudeSessionStore
	Hub      *eventHub
	Logger   logging.Logger

	ClaudeCommand    string
	OpenCodeCommand  string
	OpenCodeProvider string
	// CredentialsEnvPath is the ambient env file updated when the default
	// profile completes a login.
	CredentialsEnvPath string
	ScratchDir         string

	InterruptSettle time.Duration
	ExitSettle      time.Duration
	Cooldown        time.Duration
}

// IntegrationController watches terminal output for agent CLI activity and
// drives profile-aware launches: credential injection, rate-limit tracking,
// session capture, and the interrupt/exit/relaunch switch flow. It is the
// manager's TerminalObserver.
type IntegrationController struct {
	manager  *TerminalManager
	profiles store.ProfileStore
	limits   store.RateLimitStore
	settings store.SettingsStore
	sessions store.ClaudeSessionStore
	hub      *eventHub
	logger   logging.Logger
	injector *credentialInjector

	claudeCommand    string
	openCodeCommand  string
	openCodeProvider string
	credentialsEnv   string
	interruptSettle  time.Duration
	exitSettle       time.Duration
	cooldown         time.Duration

	mu          sync.Mutex
	lastReset   map[string]string
	lastToken   map[string]string
	lastSession map[string]string
	switching   map[string]bool
}

func NewIntegrationController(cfg IntegrationConfig) *IntegrationController {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = newEventHub()
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 5 * time.Hour
	}
	return &IntegrationController{
		manager:          cfg.Manager,
		profiles:         cfg.Profiles,
		limits:           cfg.Limits,
		settings:         cfg.Settings,
		sessions:         cfg.Sessions,
		hub:              hub,
		logger:           logger,
		injector:         newCredentialInjector(cfg.ScratchDir),
		claudeCommand:    cfg.ClaudeCommand,
		openCodeCommand:  cfg.OpenCodeCommand,
		openCodeProvider: cfg.OpenCodeProvider,
		credentialsEnv:   cfg.CredentialsEnvPath,
		interruptSettle:  cfg.InterruptSettle,
		exitSettle:       cfg.ExitSettle,
		cooldown:         cooldown,
		lastReset:        make(map[string]string),
		lastToken:        make(map[string]string),
		lastSession:      make(map[string]string),
		switching:        make(map[string]bool),
	}
}

type InvokeOptions struct {
	Agent     string
	ProfileID string
	Args      []string
}

type ResumeOptions struct {
	ProfileID string
	SessionID string
}

type SwitchResult struct {
	TerminalID string `json:"terminal_id"`
	ProfileID  string `json:"profile_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Invoke launches an agent CLI in the terminal's shell under the requested
// profile, or the active profile when none is named. Naming a profile also
// makes it the active one.
func (c *IntegrationController) Invoke(ctx context.Context, terminalID string, opts InvokeOptions) (*types.Terminal, error) {
	rt, ok := c.manager.Get(terminalID)
	if !ok {
		return nil, notFoundError("terminal not found", nil)
	}
	def, err := agents.Resolve(opts.Agent)
	if err != nil {
		return nil, invalidError(err.Error(), nil)
	}
	profile, err := c.resolveProfile(ctx, opts.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := c.launch(ctx, rt, launchSpec{def: def, profile: profile, extraArgs: opts.Args}); err != nil {
		return nil, err
	}
	if opts.ProfileID != "" {
		if err := c.profiles.SetActive(ctx, profile.ID); err != nil {
			c.logger.Warn("set_active_profile_failed",
				logging.F("profile_id", profile.ID),
				logging.Err(err),
			)
		}
	}
	return rt.Snapshot(), nil
}

// Resume relaunches the Claude CLI against a previous conversation: an
// explicit session id wins, then the terminal's captured id, then the most
// recent record for the terminal's directory, and with none of those the
// CLI's own continue-most-recent flag.
func (c *IntegrationController) Resume(ctx context.Context, terminalID string, opts ResumeOptions) (*types.Terminal, error) {
	rt, ok := c.manager.Get(terminalID)
	if !ok {
		return nil, notFoundError("terminal not found", nil)
	}
	def, ok := agents.Lookup(agents.Claude)
	if !ok || !def.Capabilities.SupportsResume {
		return nil, unavailableError("resume is not supported", nil)
	}
	profileID := strings.TrimSpace(opts.ProfileID)
	if profileID == "" {
		profileID = rt.ActiveProfileID()
	}
	profile, err := c.resolveProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		sessionID = rt.CapturedSessionID()
	}
	if sessionID == "" && c.sessions != nil {
		if record, found, err := c.sessions.MostRecent(ctx, rt.Cwd()); err == nil && found {
			sessionID = record.SessionID
		}
	}
	spec := launchSpec{
		def:       def,
		profile:   profile,
		extraArgs: def.ResumeArgs(sessionID),
		resuming:  true,
		sessionID: sessionID,
	}
	if err := c.launch(ctx, rt, spec); err != nil {
		return nil, err
	}
	return rt.Snapshot(), nil
}

// SwitchProfile moves a terminal to another profile: interrupt the running
// agent, ask it to exit, relaunch under the new credentials, and record the
// new profile as active. An unknown profile id fails the switch without
// touching terminal or store state.
func (c *IntegrationController) SwitchProfile(ctx context.Context, terminalID, profileID string) (SwitchResult, error) {
	result := SwitchResult{TerminalID: terminalID, ProfileID: profileID}
	rt, ok := c.manager.Get(terminalID)
	if !ok {
		return result, notFoundError("terminal not found", nil)
	}
	profile, found, err := c.profiles.Get(ctx, profileID)
	if err != nil {
		return result, unavailableError("loading profile", err)
	}
	if !found {
		result.Error = "profile not found"
		c.publishSwitch(terminalID, result)
		return result, nil
	}
	if !c.beginSwitch(terminalID) {
		return result, conflictError("profile switch already in progress", nil)
	}
	defer c.endSwitch(terminalID)

	// Once begun the sequence runs to completion. The API hands over the
	// request context, and a client that disconnects after the interrupt
	// must not leave the terminal stopped but never relaunched.
	ctx = context.WithoutCancel(ctx)

	def := c.agentForMode(rt.Mode())
	stopped := false
	if rt.Mode().Active() && rt.alive() {
		if err := rt.interrupt(); err != nil {
			c.logger.Warn("switch_interrupt_failed",
				logging.F("terminal_id", terminalID),
				logging.Err(err),
			)
		}
		settle(c.interruptSettle)
		if rt.alive() && def.ExitCommand != "" {
			if err := rt.writeLine(def.ExitCommand); err != nil {
				c.logger.Warn("switch_exit_failed",
					logging.F("terminal_id", terminalID),
					logging.Err(err),
				)
			}
			settle(c.exitSettle)
		}
		stopped = true
	}
	c.clearScanState(terminalID)
	if err := c.launch(ctx, rt, launchSpec{def: def, profile: profile}); err != nil {
		if stopped {
			rt.setMode(types.TerminalModeIdle)
		}
		result.Error = err.Error()
		c.publishSwitch(terminalID, result)
		return result, nil
	}
	if err := c.profiles.SetActive(ctx, profile.ID); err != nil {
		c.logger.Warn("set_active_profile_failed",
			logging.F("profile_id", profile.ID),
			logging.Err(err),
		)
	}
	result.Success = true
	c.publishSwitch(terminalID, result)
	c.logger.Info("profile_switched",
		logging.F("terminal_id", terminalID),
		logging.F("profile_id", profile.ID),
	)
	return result, nil
}

// StartLogin opens a terminal named for the profile and runs the CLI's
// token setup flow there, so the captured token can be routed back to the
// profile.
func (c *IntegrationController) StartLogin(ctx context.Context, profileID string) (*types.Terminal, error) {
	profile, found, err := c.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, unavailableError("loading profile", err)
	}
	if !found {
		return nil, notFoundError("profile not found", nil)
	}
	def, ok := agents.Lookup(agents.Claude)
	if !ok || def.LoginSubcommand == "" {
		return nil, unavailableError("login is not supported", nil)
	}
	term, err := c.manager.Open(ctx, openTerminalConfig{
		ID:    loginTerminalID(profile.ID),
		Title: fmt.Sprintf("Claude login: %s", profile.Name),
	})
	if err != nil {
		return nil, err
	}
	rt, ok := c.manager.Get(term.ID)
	if !ok {
		return nil, unavailableError("login terminal is gone", nil)
	}
	command := c.agentCommand(def) + " " + def.LoginSubcommand
	if exports := configDirExports(profile); exports != "" {
		path, cleanup, err := c.injector.WriteTransient(exports)
		if err != nil {
			_ = c.manager.CloseTerminal(ctx, term.ID)
			return nil, unavailableError("writing credential file", err)
		}
		command = injectionCommand(path, command)
		time.AfterFunc(transientCredentialTTL, cleanup)
	}
	if err := rt.writeLine(command); err != nil {
		_ = c.manager.CloseTerminal(ctx, term.ID)
		return nil, err
	}
	rt.markAgentStarted(types.TerminalModeClaude, profile.ID, time.Now().UTC())
	c.logger.Info("login_started",
		logging.F("terminal_id", term.ID),
		logging.F("profile_id", profile.ID),
	)
	return rt.Snapshot(), nil
}

// SuggestProfile returns the profile a rate-limited terminal should move
// to, or nil when every candidate is limited or misconfigured.
func (c *IntegrationController) SuggestProfile(ctx context.Context, excludingID string) (*types.Profile, error) {
	profiles, err := c.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	lastLimited := make(map[string]time.Time, len(profiles))
	for _, profile := range profiles {
		record, found, err := c.limits.LatestForProfile(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		if found {
			lastLimited[profile.ID] = record.RecordedAt
		}
	}
	return bestAvailableProfile(profiles, lastLimited, c.cooldown, time.Now().UTC(), excludingID), nil
}

// HandleOutput implements TerminalObserver. It rescans the terminal's
// recent output window and routes any newly seen detection. Heavy work
// (the switch flow) is spawned, not run inline on the reader goroutine.
func (c *IntegrationController) HandleOutput(terminalID, chunk string) {
	rt, ok := c.manager.Get(terminalID)
	if !ok {
		return
	}
	events := scanOutput(rt.bufferTail(scanWindowBytes))
	if len(events) == 0 {
		return
	}
	var email string
	for _, ev := range events {
		if ev.Kind == scanEmail {
			email = ev.Value
		}
	}
	for _, ev := range events {
		switch ev.Kind {
		case scanRateLimit:
			c.handleRateLimit(rt, ev.Value)
		case scanOAuthToken:
			c.handleOAuthToken(rt, ev.Value, email)
		case scanSessionID:
			c.handleSessionID(rt, ev.Value)
		}
	}
}

// HandleClosed implements TerminalObserver.
func (c *IntegrationController) HandleClosed(terminalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lastReset, terminalID)
	delete(c.lastToken, terminalID)
	delete(c.lastSession, terminalID)
	delete(c.switching, terminalID)
}

func (c *IntegrationController) handleRateLimit(rt *terminalRuntime, reset string) {
	terminalID := rt.ID()
	ctx := context.Background()
	profileID := c.attributeProfile(ctx, rt)
	// Keyed on profile too: after a switch the same reset string coming
	// from the new profile is a new limit, not a redraw.
	if !c.noteDetection(c.lastReset, terminalID, profileID+"\x00"+reset) {
		return
	}
	if _, err := c.limits.Record(ctx, profileID, reset); err != nil {
		c.logger.Warn("rate_limit_record_failed",
			logging.F("profile_id", profileID),
			logging.Err(err),
		)
	}
	settings, err := c.settings.AutoSwitch(ctx)
	if err != nil {
		c.logger.Warn("autoswitch_settings_failed", logging.Err(err))
		settings = types.DefaultAutoSwitchSettings()
	}
	suggested, err := c.SuggestProfile(ctx, profileID)
	if err != nil {
		c.logger.Warn("profile_suggestion_failed", logging.Err(err))
		suggested = nil
	}
	autoSwitch := settings.Enabled && settings.AutoSwitchOnRateLimit &&
		suggested != nil && rt.Mode().Active()

	payload := &types.RateLimitEvent{
		ResetTime:         reset,
		DetectedAt:        time.Now().UTC(),
		ProfileID:         profileID,
		AutoSwitchEnabled: autoSwitch,
	}
	if suggested != nil {
		payload.SuggestedProfileID = suggested.ID
		payload.SuggestedProfileName = suggested.Name
	}
	c.hub.Publish(types.UIEvent{
		Name:       types.EventClaudeRateLimit,
		TerminalID: terminalID,
		RateLimit:  payload,
	})
	c.logger.Info("claude_rate_limit",
		logging.F("terminal_id", terminalID),
		logging.F("profile_id", profileID),
		logging.F("reset_time", reset),
		logging.F("auto_switch", autoSwitch),
	)
	if !autoSwitch {
		return
	}
	go func() {
		result, err := c.SwitchProfile(context.Background(), terminalID, suggested.ID)
		if err != nil {
			c.logger.Warn("auto_switch_failed",
				logging.F("terminal_id", terminalID),
				logging.F("profile_id", suggested.ID),
				logging.Err(err),
			)
			return
		}
		if !result.Success {
			c.logger.Warn("auto_switch_failed",
				logging.F("terminal_id", terminalID),
				logging.F("profile_id", suggested.ID),
				logging.F("error", result.Error),
			)
		}
	}()
}

func (c *IntegrationController) handleOAuthToken(rt *terminalRuntime, token, email string) {
	terminalID := rt.ID()
	if !c.noteDetection(c.lastToken, terminalID, token) {
		return
	}
	ctx := context.Background()
	payload := &types.OAuthTokenEvent{Email: email, DetectedAt: time.Now().UTC()}
	profileID, fromLogin := c.resolveLoginProfile(ctx, terminalID)
	switch {
	case !fromLogin:
		payload.Message = "token not associated with a profile"
	case profileID == types.DefaultProfileID:
		if err := writeAmbientCredentials(c.credentialsEnv, token); err != nil {
			payload.Message = "failed to update ambient credentials"
			c.logger.Warn("ambient_credentials_write_failed", logging.Err(err))
		} else {
			// Export immediately too; the file watcher would get there,
			// but a launch may come first.
			_ = os.Setenv(envClaudeOAuthToken, token)
			_ = os.Setenv(envAnthropicToken, token)
			payload.ProfileID = profileID
			payload.Success = true
			payload.Message = "ambient credentials updated"
		}
	default:
		stored, err := c.profiles.SetToken(ctx, profileID, token, email)
		switch {
		case err != nil:
			payload.Message = "failed to store token"
			c.logger.Warn("token_store_failed",
				logging.F("profile_id", profileID),
				logging.Err(err),
			)
		case !stored:
			payload.Message = "token not associated with a profile"
		default:
			payload.ProfileID = profileID
			payload.Success = true
		}
	}
	c.hub.Publish(types.UIEvent{
		Name:       types.EventClaudeOAuthToken,
		TerminalID: terminalID,
		OAuthToken: payload,
	})
	c.logger.Info("oauth_token_captured",
		logging.F("terminal_id", terminalID),
		logging.F("profile_id", payload.ProfileID),
		logging.F("success", payload.Success),
	)
}

func (c *IntegrationController) handleSessionID(rt *terminalRuntime, sessionID string) {
	if rt.Mode() != types.TerminalModeClaude {
		return
	}
	terminalID := rt.ID()
	if !c.noteDetection(c.lastSession, terminalID, sessionID) {
		return
	}
	rt.setCapturedSessionID(sessionID)
	ctx := context.Background()
	if c.sessions != nil {
		if _, err := c.sessions.UpdateSessionID(ctx, rt.Cwd(), terminalID, sessionID); err != nil {
			// Agent launched outside Invoke: no record yet for this terminal.
			record := &types.ClaudeSessionRecord{
				TerminalID: terminalID,
				Cwd:        rt.Cwd(),
				SessionID:  sessionID,
			}
			if _, err := c.sessions.Upsert(ctx, record); err != nil {
				c.logger.Warn("session_record_failed",
					logging.F("terminal_id", terminalID),
					logging.Err(err),
				)
			}
		}
	}
	c.hub.Publish(types.UIEvent{
		Name:       types.EventClaudeSessionID,
		TerminalID: terminalID,
		SessionID:  &types.SessionIDEvent{CapturedSessionID: sessionID},
	})
	c.logger.Info("session_id_captured",
		logging.F("terminal_id", terminalID),
		logging.F("session_id", sessionID),
	)
}

type launchSpec struct {
	def       agents.Definition
	profile   *types.Profile
	extraArgs []string
	resuming  bool
	sessionID string
}

func (c *IntegrationController) launch(ctx context.Context, rt *terminalRuntime, spec launchSpec) error {
	command := c.agentCommand(spec.def)
	if len(spec.extraArgs) > 0 {
		command += " " + shellJoinArgs(spec.extraArgs)
	}
	// Profile credentials are a Claude concern. OpenCode gets its provider
	// from config and its key from the ambient environment.
	var exports string
	switch spec.def.Name {
	case agents.Claude:
		exports = c.launchExports(rt, spec.profile)
	case agents.OpenCode:
		if c.openCodeProvider != "" {
			command = "OPENCODE_PROVIDER=" + quoteShellSingle(c.openCodeProvider) + " " + command
		}
	}
	var cleanup func()
	if exports != "" {
		path, remove, err := c.injector.WriteTransient(exports)
		if err != nil {
			return unavailableError("writing credential file", err)
		}
		command = injectionCommand(path, command)
		cleanup = remove
	}
	if err := rt.writeLine(command); err != nil {
		if cleanup != nil {
			cleanup()
		}
		return err
	}
	if cleanup != nil {
		time.AfterFunc(transientCredentialTTL, cleanup)
	}

	terminalID := rt.ID()
	if spec.resuming {
		if spec.sessionID != "" {
			rt.setCapturedSessionID(spec.sessionID)
		}
	} else {
		rt.clearCapturedSessionID()
		c.mu.Lock()
		delete(c.lastSession, terminalID)
		c.mu.Unlock()
	}
	mode := types.TerminalModeClaude
	if spec.def.Name == agents.OpenCode {
		mode = types.TerminalModeOpenCode
	}
	rt.markAgentStarted(mode, spec.profile.ID, time.Now().UTC())
	if err := c.profiles.MarkUsed(ctx, spec.profile.ID); err != nil {
		c.logger.Warn("mark_used_failed",
			logging.F("profile_id", spec.profile.ID),
			logging.Err(err),
		)
	}

	title := spec.def.Label
	if !spec.profile.IsDefault {
		title = fmt.Sprintf("%s (%s)", spec.def.Label, spec.profile.Name)
	}
	rt.setTitle(title)
	c.hub.Publish(types.UIEvent{
		Name:       types.EventTerminalTitle,
		TerminalID: terminalID,
		Title:      &types.TitleEvent{Title: title},
	})

	if spec.def.Name == agents.Claude && c.sessions != nil {
		record := &types.ClaudeSessionRecord{
			TerminalID: terminalID,
			Cwd:        rt.Cwd(),
			SessionID:  spec.sessionID,
			Title:      title,
		}
		if _, err := c.sessions.Upsert(ctx, record); err != nil {
			c.logger.Warn("session_record_failed",
				logging.F("terminal_id", terminalID),
				logging.Err(err),
			)
		}
	}

	c.logger.Info("agent_launched",
		logging.F("terminal_id", terminalID),
		logging.F("agent", spec.def.Name),
		logging.F("profile_id", spec.profile.ID),
		logging.F("resuming", spec.resuming),
	)
	return nil
}

// launchExports decides what the launch line must source before starting
// the CLI. Exports persist in the shell, so a relaunch under the profile
// already in place needs nothing; moving back to the default profile has to
// restore the daemon's own environment over the previous profile's exports.
func (c *IntegrationController) launchExports(rt *terminalRuntime, profile *types.Profile) string {
	previous := rt.ActiveProfileID()
	if profile.IsDefault {
		if previous == "" || previous == profile.ID {
			return ""
		}
		return ambientResetExports()
	}
	if previous == profile.ID {
		return ""
	}
	exports := credentialExports(profile)
	if exports == "" {
		c.logger.Warn("profile_missing_credential",
			logging.F("profile_id", profile.ID),
		)
	}
	return exports
}

func (c *IntegrationController) resolveProfile(ctx context.Context, profileID string) (*types.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		profile, err := c.profiles.GetActive(ctx)
		if err != nil {
			return nil, unavailableError("loading active profile", err)
		}
		return profile, nil
	}
	profile, found, err := c.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, unavailableError("loading profile", err)
	}
	if !found {
		return nil, notFoundError("profile not found", nil)
	}
	return profile, nil
}

func (c *IntegrationController) attributeProfile(ctx context.Context, rt *terminalRuntime) string {
	if id := rt.ActiveProfileID(); id != "" {
		return id
	}
	if active, err := c.profiles.GetActive(ctx); err == nil && active != nil {
		return active.ID
	}
	return types.DefaultProfileID
}

func (c *IntegrationController) agentCommand(def agents.Definition) string {
	if def.EnvCommandVar != "" {
		if override := strings.TrimSpace(os.Getenv(def.EnvCommandVar)); override != "" {
			return override
		}
	}
	switch def.Name {
	case agents.Claude:
		if c.claudeCommand != "" {
			return c.claudeCommand
		}
	case agents.OpenCode:
		if c.openCodeCommand != "" {
			return c.openCodeCommand
		}
	}
	return def.DefaultCommand
}

func (c *IntegrationController) agentForMode(mode types.TerminalMode) agents.Definition {
	name := agents.Claude
	if mode == types.TerminalModeOpenCode {
		name = agents.OpenCode
	}
	def, _ := agents.Lookup(name)
	return def
}

// noteDetection records a newly seen value for the terminal, reporting
// false when the value is the one already recorded. This is what keeps a
// TUI redrawing the same notice from producing an event per frame.
func (c *IntegrationController) noteDetection(kind map[string]string, terminalID, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind[terminalID] == value {
		return false
	}
	kind[terminalID] = value
	return true
}

func (c *IntegrationController) clearScanState(terminalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lastReset, terminalID)
	delete(c.lastToken, terminalID)
	delete(c.lastSession, terminalID)
}

func (c *IntegrationController) beginSwitch(terminalID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.switching[terminalID] {
		return false
	}
	c.switching[terminalID] = true
	return true
}

func (c *IntegrationController) endSwitch(terminalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.switching, terminalID)
}

func (c *IntegrationController) publishSwitch(terminalID string, result SwitchResult) {
	c.hub.Publish(types.UIEvent{
		Name:       types.EventProfileSwitched,
		TerminalID: terminalID,
		Switch: &types.SwitchEvent{
			ProfileID: result.ProfileID,
			Success:   result.Success,
			Error:     result.Error,
		},
	})
}

func loginTerminalID(profileID string) string {
	return loginTerminalPrefix + profileID + "-" + uuid.NewString()[:8]
}

// resolveLoginProfile recovers the profile a login terminal was opened
// for. Profile ids can themselves contain hyphens and the terminal name
// carries a disambiguator added at open time, so candidates are tried
// longest first against the store before falling back to the id shape the
// store allocates.
func (c *IntegrationController) resolveLoginProfile(ctx context.Context, terminalID string) (string, bool) {
	candidates := loginProfileCandidates(terminalID)
	if len(candidates) == 0 {
		return "", false
	}
	for _, id := range candidates {
		if id == types.DefaultProfileID {
			return id, true
		}
		if _, found, err := c.profiles.Get(ctx, id); err == nil && found {
			return id, true
		}
	}
	if id, ok := sequencedProfileID(candidates[0]); ok {
		return id, true
	}
	return candidates[0], true
}

// loginProfileCandidates lists the profile ids a login terminal name may
// refer to, longest first: the full remainder after the prefix, then each
// shorter cut at a hyphen boundary.
func loginProfileCandidates(terminalID string) []string {
	rest, ok := strings.CutPrefix(terminalID, loginTerminalPrefix)
	if !ok || rest == "" {
		return nil
	}
	candidates := []string{rest}
	for i := strings.LastIndex(rest, "-"); i > 0; i = strings.LastIndex(rest, "-") {
		rest = rest[:i]
		candidates = append(candidates, rest)
	}
	return candidates
}

// sequencedProfileID trims the disambiguator from a name built on a
// store-allocated id ("profile-<n>"), so a login for a since-deleted
// profile still fails under the intended id rather than the raw suffix.
func sequencedProfileID(rest string) (string, bool) {
	tail, ok := strings.CutPrefix(rest, "profile-")
	if !ok {
		return "", false
	}
	digits := 0
	for digits < len(tail) && tail[digits] >= '0' && tail[digits] <= '9' {
		digits++
	}
	if digits == 0 || (digits < len(tail) && tail[digits] != '-') {
		return "", false
	}
	return "profile-" + tail[:digits], true
}

func settle(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
