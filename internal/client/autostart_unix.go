//go:build !windows

package client

import (
	"os/exec"
	"syscall"
)

// applyDaemonSysProcAttr detaches the daemon from the CLI's session so
// it survives the parent terminal closing.
func applyDaemonSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
