package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"switchboard/internal/logging"
)

const credReloadDebounce = 500 * time.Millisecond

// ambientEnvKeys are the only variables the credentials file may set in the
// daemon environment. Everything else in the file is ignored.
var ambientEnvKeys = []string{
	envClaudeOAuthToken,
	envAnthropicToken,
	"OPENCODE_API_KEY",
	"OPENCODE_PROVIDER",
}

// credWatcher keeps the daemon's ambient environment in sync with the
// credentials env file, so the default profile picks up externally edited
// tokens without a restart.
type credWatcher struct {
	envPath string
	logger  logging.Logger
}

func newCredWatcher(envPath string, logger logging.Logger) *credWatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &credWatcher{envPath: envPath, logger: logger}
}

// LoadOnce applies the file to the daemon environment immediately. A missing
// file is not an error.
func (w *credWatcher) LoadOnce() error {
	env, err := godotenv.Read(w.envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	applied := 0
	for _, key := range ambientEnvKeys {
		value, ok := env[key]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
		applied++
	}
	if applied > 0 {
		w.logger.Info("ambient_credentials_loaded",
			logging.F("path", w.envPath),
			logging.F("keys", applied),
		)
	}
	return nil
}

// Run watches the file's directory until the context ends, reloading after
// writes settle. Editors replace files rather than write in place, so
// create and rename events count too.
func (w *credWatcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(w.envPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	if err := fsw.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	base := filepath.Base(w.envPath)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(credReloadDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(credReloadDebounce)
			}
		case <-timerC:
			if err := w.LoadOnce(); err != nil {
				w.logger.Warn("ambient_credentials_reload_failed",
					logging.F("path", w.envPath),
					logging.Err(err),
				)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("credentials_watch_error", logging.Err(err))
		}
	}
}
