package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".switchboard"

// BaseDir returns the data directory for switchboard.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.toml"), nil
}

// DBPath returns the path to the bbolt database.
func DBPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "switchboard.db"), nil
}

// TokenPath returns the path to the daemon auth token file.
func TokenPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "token"), nil
}

// CredentialsEnvPath returns the path to the ambient credentials env file
// consulted for default-profile launches.
func CredentialsEnvPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "credentials.env"), nil
}

// ScratchDir returns the directory used for transient credential files. It
// lives under the data dir so restrictive permissions are inherited.
func ScratchDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "scratch"), nil
}

// StateRootDir returns the directory holding per-working-directory state.
func StateRootDir() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "state"), nil
}

// LogFilePath returns the path of the background daemon log.
func LogFilePath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "daemon.log"), nil
}

