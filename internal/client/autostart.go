package client

import (
	"io"
	"os"
	"os/exec"

	"switchboard/internal/config"
)

// StartBackgroundDaemon launches the current executable as a detached
// daemon process. Its output goes to the daemon log so a child that
// dies on startup still leaves a trace.
func StartBackgroundDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(exe, "daemon", "--background")
	applyDaemonSysProcAttr(cmd)

	logWriter := io.Discard
	var logFile *os.File
	if base, err := config.BaseDir(); err == nil {
		if err := os.MkdirAll(base, 0o700); err == nil {
			if logPath, err := config.LogFilePath(); err == nil {
				if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
					logWriter = file
					logFile = file
				}
			}
		}
	}
	cmd.Stdout = logWriter
	cmd.Stderr = logWriter

	err = cmd.Start()
	if logFile != nil {
		_ = logFile.Close()
	}
	return err
}
