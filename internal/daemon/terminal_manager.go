package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"switchboard/internal/logging"
	"switchboard/internal/types"
)

// TerminalObserver receives terminal lifecycle callbacks. HandleOutput runs
// on the output path and must return promptly, pushing long work to a
// goroutine; HandleClosed may be called more than once for a terminal and
// must be idempotent.
type TerminalObserver interface {
	HandleOutput(terminalID string, chunk string)
	HandleClosed(terminalID string)
}

type TerminalManagerConfig struct {
	Shell           string
	ScrollbackBytes int
	Logger          logging.Logger
	Hub             *eventHub
}

// TerminalManager owns every live terminal: the child shell process, the
// bounded output buffer, and the tail subscribers.
type TerminalManager struct {
	shell      string
	scrollback int
	logger     logging.Logger
	hub        *eventHub

	mu        sync.Mutex
	terminals map[string]*terminalRuntime
	observer  TerminalObserver
}

type terminalRuntime struct {
	mu      sync.Mutex
	info    *types.Terminal
	proc    *shellProcess
	buffer  *outputBuffer
	tail    *tailHub
	closing bool
}

type openTerminalConfig struct {
	ID    string
	Title string
	Cwd   string
	Shell string
	Env   []string
}

func NewTerminalManager(cfg TerminalManagerConfig) *TerminalManager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	hub := cfg.Hub
	if hub == nil {
		hub = newEventHub()
	}
	return &TerminalManager{
		shell:      cfg.Shell,
		scrollback: cfg.ScrollbackBytes,
		logger:     logger,
		hub:        hub,
		terminals:  make(map[string]*terminalRuntime),
	}
}

func (m *TerminalManager) SetObserver(observer TerminalObserver) {
	m.mu.Lock()
	m.observer = observer
	m.mu.Unlock()
}

func (m *TerminalManager) currentObserver() TerminalObserver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observer
}

func (m *TerminalManager) Open(ctx context.Context, cfg openTerminalConfig) (*types.Terminal, error) {
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		id = "term-" + uuid.NewString()[:8]
	}
	cwd := strings.TrimSpace(cfg.Cwd)
	if cwd == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, invalidError("working directory is required", err)
		}
		cwd = home
	}
	shell := strings.TrimSpace(cfg.Shell)
	if shell == "" {
		shell = m.shell
	}
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = filepath.Base(cwd)
	}

	rt := &terminalRuntime{
		info: &types.Terminal{
			ID:        id,
			Title:     title,
			Cwd:       cwd,
			Mode:      types.TerminalModeIdle,
			CreatedAt: time.Now().UTC(),
		},
		buffer: newOutputBuffer(m.scrollback),
		tail:   newTailHub(),
	}

	m.mu.Lock()
	if _, exists := m.terminals[id]; exists {
		m.mu.Unlock()
		return nil, conflictError("terminal already exists: "+id, nil)
	}
	m.terminals[id] = rt
	m.mu.Unlock()

	proc, err := startShellProcess(shellStartConfig{
		Shell: shell,
		Cwd:   cwd,
		Env:   cfg.Env,
	}, func(chunk []byte) {
		m.dispatchOutput(rt, chunk)
	})
	if err != nil {
		m.mu.Lock()
		delete(m.terminals, id)
		m.mu.Unlock()
		return nil, unavailableError("failed to start shell", err)
	}

	rt.mu.Lock()
	rt.proc = proc
	rt.info.PID = proc.PID()
	snapshot := types.CloneTerminal(rt.info)
	rt.mu.Unlock()

	go m.reap(rt)

	m.logger.Info("terminal_opened",
		logging.F("terminal_id", id),
		logging.F("cwd", cwd),
		logging.F("pid", snapshot.PID),
	)
	m.hub.Publish(types.UIEvent{Name: types.EventTerminalOpened, TerminalID: id})
	return snapshot, nil
}

func (m *TerminalManager) dispatchOutput(rt *terminalRuntime, chunk []byte) {
	now := time.Now().UTC()
	rt.mu.Lock()
	rt.info.LastOutputAt = &now
	id := rt.info.ID
	rt.mu.Unlock()

	rt.buffer.Append(chunk)
	rt.tail.Broadcast(types.OutputChunk{TerminalID: id, Data: string(chunk), At: now})
	if observer := m.currentObserver(); observer != nil {
		observer.HandleOutput(id, string(chunk))
	}
}

func (m *TerminalManager) reap(rt *terminalRuntime) {
	<-rt.proc.Done()
	exitErr := rt.proc.ExitErr()

	rt.mu.Lock()
	rt.info.Exited = true
	rt.info.Mode = types.TerminalModeIdle
	id := rt.info.ID
	closing := rt.closing
	rt.mu.Unlock()

	if closing {
		return
	}
	if exitErr != nil && !isExitSignal(exitErr) {
		m.logger.Warn("terminal_exited",
			logging.F("terminal_id", id),
			logging.Err(exitErr),
		)
	} else {
		m.logger.Info("terminal_exited", logging.F("terminal_id", id))
	}
	m.hub.Publish(types.UIEvent{Name: types.EventTerminalExited, TerminalID: id})
	if observer := m.currentObserver(); observer != nil {
		observer.HandleClosed(id)
	}
}

func (m *TerminalManager) Get(id string) (*terminalRuntime, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.terminals[id]
	return rt, ok
}

func (m *TerminalManager) List() []*types.Terminal {
	m.mu.Lock()
	runtimes := make([]*terminalRuntime, 0, len(m.terminals))
	for _, rt := range m.terminals {
		runtimes = append(runtimes, rt)
	}
	m.mu.Unlock()

	out := make([]*types.Terminal, 0, len(runtimes))
	for _, rt := range runtimes {
		out = append(out, rt.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *TerminalManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.terminals)
}

// WriteInput forwards raw bytes to the terminal's shell.
func (m *TerminalManager) WriteInput(id, data string) error {
	rt, ok := m.Get(id)
	if !ok {
		return notFoundError("terminal not found: "+id, nil)
	}
	if err := rt.write(data); err != nil {
		return unavailableError("terminal input failed", err)
	}
	return nil
}

func (m *TerminalManager) CloseTerminal(ctx context.Context, id string) error {
	m.mu.Lock()
	rt, ok := m.terminals[id]
	if ok {
		delete(m.terminals, id)
	}
	m.mu.Unlock()
	if !ok {
		return notFoundError("terminal not found: "+id, nil)
	}

	rt.mu.Lock()
	rt.closing = true
	proc := rt.proc
	rt.mu.Unlock()

	if proc != nil {
		_ = proc.Close()
	}
	rt.tail.Close()

	m.logger.Info("terminal_closed", logging.F("terminal_id", id))
	m.hub.Publish(types.UIEvent{Name: types.EventTerminalClosed, TerminalID: id})
	if observer := m.currentObserver(); observer != nil {
		observer.HandleClosed(id)
	}
	return nil
}

// CloseAll tears down every terminal; used on daemon shutdown.
func (m *TerminalManager) CloseAll(ctx context.Context) {
	for _, info := range m.List() {
		_ = m.CloseTerminal(ctx, info.ID)
	}
}

func (m *TerminalManager) SubscribeTail(id string) (<-chan types.OutputChunk, func(), error) {
	rt, ok := m.Get(id)
	if !ok {
		return nil, nil, notFoundError("terminal not found: "+id, nil)
	}
	ch, cancel := rt.tail.Subscribe()
	return ch, cancel, nil
}

// SnapshotOutput returns up to maxBytes of the terminal's buffered output.
func (m *TerminalManager) SnapshotOutput(id string, maxBytes int) (string, error) {
	rt, ok := m.Get(id)
	if !ok {
		return "", notFoundError("terminal not found: "+id, nil)
	}
	return rt.buffer.Tail(maxBytes), nil
}

func (rt *terminalRuntime) ID() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.info.ID
}

func (rt *terminalRuntime) Snapshot() *types.Terminal {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return types.CloneTerminal(rt.info)
}

func (rt *terminalRuntime) Cwd() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.info.Cwd
}

func (rt *terminalRuntime) Mode() types.TerminalMode {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.info.Mode
}

func (rt *terminalRuntime) ActiveProfileID() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.info.ActiveProfileID
}

func (rt *terminalRuntime) CapturedSessionID() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.info.CapturedSessionID
}

func (rt *terminalRuntime) alive() bool {
	rt.mu.Lock()
	proc := rt.proc
	closing := rt.closing
	rt.mu.Unlock()
	return proc != nil && proc.Alive() && !closing
}

func (rt *terminalRuntime) write(data string) error {
	rt.mu.Lock()
	proc := rt.proc
	rt.mu.Unlock()
	if proc == nil {
		return errors.New("process not started")
	}
	return proc.write(data)
}

func (rt *terminalRuntime) writeLine(text string) error {
	return rt.write(text + "\n")
}

func (rt *terminalRuntime) interrupt() error {
	rt.mu.Lock()
	proc := rt.proc
	rt.mu.Unlock()
	if proc == nil {
		return errors.New("process not started")
	}
	return proc.Interrupt()
}

func (rt *terminalRuntime) bufferTail(maxBytes int) string {
	return rt.buffer.Tail(maxBytes)
}

func (rt *terminalRuntime) setTitle(title string) {
	rt.mu.Lock()
	rt.info.Title = title
	rt.mu.Unlock()
}

func (rt *terminalRuntime) markAgentStarted(mode types.TerminalMode, profileID string, at time.Time) {
	rt.mu.Lock()
	rt.info.Mode = mode
	rt.info.ActiveProfileID = profileID
	rt.info.AgentStartedAt = &at
	rt.mu.Unlock()
}

func (rt *terminalRuntime) setMode(mode types.TerminalMode) {
	rt.mu.Lock()
	rt.info.Mode = mode
	rt.mu.Unlock()
}

func (rt *terminalRuntime) setCapturedSessionID(sessionID string) {
	rt.mu.Lock()
	rt.info.CapturedSessionID = sessionID
	rt.mu.Unlock()
}

func (rt *terminalRuntime) clearCapturedSessionID() {
	rt.mu.Lock()
	rt.info.CapturedSessionID = ""
	rt.mu.Unlock()
}
