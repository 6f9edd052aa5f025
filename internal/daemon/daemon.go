package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"switchboard/internal/config"
	"switchboard/internal/logging"
	"switchboard/internal/store"
)

type DaemonConfig struct {
	Addr               string
	Token              string
	Version            string
	Settings           config.Config
	Repo               store.Repository
	Sessions           store.ClaudeSessionStore
	CredentialsEnvPath string
	ScratchDir         string
	Logger             logging.Logger
}

// Daemon owns the HTTP server and the background workers around the
// terminal manager. One instance per process.
type Daemon struct {
	cfg    DaemonConfig
	logger logging.Logger
	server *http.Server
}

func New(cfg DaemonConfig) *Daemon {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Daemon{cfg: cfg, logger: logger}
}

// Run serves until ctx is canceled or a shutdown request arrives. Open
// terminals are torn down on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := newEventHub()
	manager := NewTerminalManager(TerminalManagerConfig{
		Shell:           d.cfg.Settings.Shell(),
		ScrollbackBytes: d.cfg.Settings.Scrollback(),
		Logger:          d.logger,
		Hub:             hub,
	})
	controller := NewIntegrationController(IntegrationConfig{
		Manager:            manager,
		Profiles:           d.cfg.Repo.Profiles(),
		Limits:             d.cfg.Repo.RateLimits(),
		Settings:           d.cfg.Repo.Settings(),
		Sessions:           d.cfg.Sessions,
		Hub:                hub,
		Logger:             d.logger,
		ClaudeCommand:      d.cfg.Settings.ClaudeCommand(),
		OpenCodeCommand:    d.cfg.Settings.OpenCodeCommand(),
		OpenCodeProvider:   d.cfg.Settings.OpenCodeProvider(),
		CredentialsEnvPath: d.cfg.CredentialsEnvPath,
		ScratchDir:         d.cfg.ScratchDir,
		InterruptSettle:    d.cfg.Settings.InterruptSettle(),
		ExitSettle:         d.cfg.Settings.ExitSettle(),
		Cooldown:           d.cfg.Settings.RateLimitCooldown(),
	})
	manager.SetObserver(controller)

	watcher := newCredWatcher(d.cfg.CredentialsEnvPath, d.logger)
	if err := watcher.LoadOnce(); err != nil {
		d.logger.Warn("ambient_credentials_load_failed", logging.Err(err))
	}
	go func() {
		if err := watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("credentials_watcher_stopped", logging.Err(err))
		}
	}()

	notifier := NewDesktopNotifier(
		d.cfg.Settings.NotificationMethod(),
		d.cfg.Settings.NotificationsEnabled(),
		d.logger,
	)
	go notifier.Run(runCtx, hub)

	api := &API{
		Version:    d.cfg.Version,
		Manager:    manager,
		Controller: controller,
		Profiles:   d.cfg.Repo.Profiles(),
		Limits:     d.cfg.Repo.RateLimits(),
		Settings:   d.cfg.Repo.Settings(),
		Hub:        hub,
		Logger:     d.logger,
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := TokenAuthMiddleware(d.cfg.Token, LoggingMiddleware(d.logger, mux))
	d.server = &http.Server{
		Addr:    d.cfg.Addr,
		Handler: handler,
	}
	api.Shutdown = d.server.Shutdown

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("daemon_listening",
			logging.F("addr", d.cfg.Addr),
			logging.F("version", d.cfg.Version),
		)
		errCh <- d.server.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		runErr = d.server.Shutdown(shutdownCtx)
		cancelShutdown()
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	manager.CloseAll(closeCtx)
	cancelClose()
	d.logger.Info("daemon_stopped")
	return runErr
}

// Addr reports the configured listen address.
func (d *Daemon) Addr() string {
	return d.cfg.Addr
}
