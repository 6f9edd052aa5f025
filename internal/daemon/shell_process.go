package daemon

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// shellProcess is the byte-stream handle to one terminal's child shell. The
// owning terminal runtime is the sole writer; output flows through the
// chunk callback in arrival order.
type shellProcess struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	waitErr error
}

type shellStartConfig struct {
	Shell string
	Cwd   string
	Env   []string
}

type chunkWriter struct {
	fn func([]byte)
}

func (w chunkWriter) Write(p []byte) (int, error) {
	if w.fn != nil && len(p) > 0 {
		chunk := make([]byte, len(p))
		copy(chunk, p)
		w.fn(chunk)
	}
	return len(p), nil
}

func startShellProcess(cfg shellStartConfig, onOutput func([]byte)) (*shellProcess, error) {
	shell := strings.TrimSpace(cfg.Shell)
	if shell == "" {
		return nil, errors.New("shell command is required")
	}
	cmd := exec.Command(shell)
	if cfg.Cwd != "" {
		cmd.Dir = cfg.Cwd
	}
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.SysProcAttr = sysProcAttrForShell()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &shellProcess{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}

	sink := chunkWriter{fn: onOutput}
	var copies sync.WaitGroup
	copies.Add(2)
	go func() {
		defer copies.Done()
		_, _ = io.Copy(sink, stdoutPipe)
	}()
	go func() {
		defer copies.Done()
		_, _ = io.Copy(sink, stderrPipe)
	}()
	go func() {
		copies.Wait()
		err := cmd.Wait()
		p.mu.Lock()
		p.waitErr = err
		p.mu.Unlock()
		close(p.done)
	}()

	return p, nil
}

func (p *shellProcess) PID() int {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *shellProcess) Done() <-chan struct{} {
	return p.done
}

func (p *shellProcess) Alive() bool {
	if p == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *shellProcess) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitErr
}

func (p *shellProcess) write(text string) error {
	if !p.Alive() {
		return errors.New("process has exited")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("process input closed")
	}
	_, err := io.WriteString(p.stdin, text)
	return err
}

// Interrupt delivers SIGINT to the shell's process group, reaching the
// foreground agent CLI as well.
func (p *shellProcess) Interrupt() error {
	if !p.Alive() {
		return errors.New("process has exited")
	}
	return signalInterruptGroup(p.PID())
}

// Close tears the process down: input closed, group killed, exit awaited.
func (p *shellProcess) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		_ = p.stdin.Close()
	}
	p.mu.Unlock()

	if p.Alive() {
		_ = signalKillGroup(p.PID())
	}
	<-p.done
	return nil
}
