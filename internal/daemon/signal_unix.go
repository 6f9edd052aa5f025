//go:build !windows

package daemon

import (
	"errors"
	"os/exec"
	"syscall"
)

// Terminal shells run as process-group leaders so signals reach the shell
// and whatever agent CLI it is currently running.

func sysProcAttrForShell() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func signalInterruptGroup(pid int) error {
	if pid <= 0 {
		return errors.New("process not running")
	}
	return syscall.Kill(-pid, syscall.SIGINT)
}

func signalKillGroup(pid int) error {
	if pid <= 0 {
		return errors.New("process not running")
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}

func isExitSignal(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return false
	}
	return status.Signaled()
}
