//go:build windows

package daemon

import (
	"errors"
	"os"
	"syscall"
)

func sysProcAttrForShell() *syscall.SysProcAttr {
	return nil
}

func signalInterruptGroup(pid int) error {
	if pid <= 0 {
		return errors.New("process not running")
	}
	// No SIGINT delivery to a process group without a console; callers fall
	// back to the exit command alone.
	return nil
}

func signalKillGroup(pid int) error {
	if pid <= 0 {
		return errors.New("process not running")
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Kill()
}

func isExitSignal(err error) bool {
	return false
}
