package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"switchboard/internal/types"
)

// Env vars the Claude CLI reads for authentication. Both token variables are
// exported so either CLI build picks the credential up.
const (
	envClaudeOAuthToken = "CLAUDE_CODE_OAUTH_TOKEN"
	envAnthropicToken   = "ANTHROPIC_AUTH_TOKEN"
	envClaudeConfigDir  = "CLAUDE_CONFIG_DIR"
)

// credentialInjector scopes a profile's secret to a single shell invocation:
// the exports live in a 0600 file under the daemon's scratch directory that
// the launch command sources and deletes before starting the CLI.
type credentialInjector struct {
	scratchDir string
}

func newCredentialInjector(scratchDir string) *credentialInjector {
	return &credentialInjector{scratchDir: scratchDir}
}

// WriteTransient creates a single-use env file holding the given export
// lines. The caller embeds the returned path in a source-then-delete launch
// command; cleanup is the fallback for paths where that command never ran.
func (j *credentialInjector) WriteTransient(exports string) (string, func(), error) {
	if exports == "" {
		return "", nil, errors.New("no exports to write")
	}
	if err := os.MkdirAll(j.scratchDir, 0o700); err != nil {
		return "", nil, err
	}
	file, err := os.CreateTemp(j.scratchDir, "cred-*.env")
	if err != nil {
		return "", nil, err
	}
	path := file.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := file.WriteString(exports); err != nil {
		_ = file.Close()
		cleanup()
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func credentialExports(profile *types.Profile) string {
	if profile == nil {
		return ""
	}
	var b strings.Builder
	if token := strings.TrimSpace(profile.OAuthToken); token != "" {
		fmt.Fprintf(&b, "export %s=%s\n", envClaudeOAuthToken, quoteShellSingle(token))
		fmt.Fprintf(&b, "export %s=%s\n", envAnthropicToken, quoteShellSingle(token))
	}
	if dir := strings.TrimSpace(profile.ConfigDir); dir != "" {
		fmt.Fprintf(&b, "export %s=%s\n", envClaudeConfigDir, quoteShellSingle(dir))
	}
	return b.String()
}

// ambientResetExports rebuilds the shell environment from the daemon's own,
// for switching a terminal back to the default profile after another
// profile's exports were sourced there. Variables the daemon does not carry
// are unset rather than left at the previous profile's values.
func ambientResetExports() string {
	var b strings.Builder
	for _, key := range []string{envClaudeOAuthToken, envAnthropicToken, envClaudeConfigDir} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			fmt.Fprintf(&b, "export %s=%s\n", key, quoteShellSingle(value))
		} else {
			fmt.Fprintf(&b, "unset %s\n", key)
		}
	}
	return b.String()
}

// configDirExports is used for login launches: the profile's existing token
// is deliberately left out so the CLI mints a fresh one, but a dedicated
// config dir still has to point at the right account state.
func configDirExports(profile *types.Profile) string {
	if profile == nil {
		return ""
	}
	dir := strings.TrimSpace(profile.ConfigDir)
	if dir == "" {
		return ""
	}
	return fmt.Sprintf("export %s=%s\n", envClaudeConfigDir, quoteShellSingle(dir))
}

// injectionCommand sources the credential file, removes it, then launches
// the CLI, all in one shell line so the secret never outlives the launch.
func injectionCommand(credPath, launch string) string {
	quoted := quoteShellSingle(credPath)
	return fmt.Sprintf(". %s; rm -f -- %s; %s", quoted, quoted, launch)
}

func quoteShellSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var plainShellArg = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// shellJoinArgs renders extra CLI arguments into a launch line, quoting
// anything the shell would otherwise interpret.
func shellJoinArgs(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "" {
			parts = append(parts, "''")
			continue
		}
		if plainShellArg.MatchString(arg) {
			parts = append(parts, arg)
			continue
		}
		parts = append(parts, quoteShellSingle(arg))
	}
	return strings.Join(parts, " ")
}

// writeAmbientCredentials persists a token captured for the default profile
// into the ambient env file the daemon loads at startup and watches for
// changes.
func writeAmbientCredentials(envPath, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := os.MkdirAll(filepath.Dir(envPath), 0o700); err != nil {
		return err
	}
	env, err := godotenv.Read(envPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		env = map[string]string{}
	}
	env[envClaudeOAuthToken] = token
	env[envAnthropicToken] = token
	content, err := godotenv.Marshal(env)
	if err != nil {
		return err
	}
	// Side-written and renamed in: the watcher re-reads this file on every
	// change and must never see it truncated or world-readable.
	file, err := os.CreateTemp(filepath.Dir(envPath), ".credentials-*.env")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()
	if err := file.Chmod(0o600); err != nil {
		_ = file.Close()
		return err
	}
	if _, err := file.WriteString(content + "\n"); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(file.Name(), envPath)
}
