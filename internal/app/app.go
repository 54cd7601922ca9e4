package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prodwatch/internal/backend"
	"github.com/five82/prodwatch/internal/config"
	"github.com/five82/prodwatch/internal/launcher"
	"github.com/five82/prodwatch/internal/logging"
	"github.com/five82/prodwatch/internal/monitor"
	"github.com/five82/prodwatch/internal/prefs"
	"github.com/five82/prodwatch/internal/ui"
)

// Options configure the prodwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/prodwatch/prefs.toml
	APIBind    string // overrides the configured backend address
	NoBackend  bool   // attach to a running backend instead of launching one
	URL        string // prefilled into the input
}

// Run boots the prodwatch TUI until the user quits or the context is
// cancelled. A backend launched here is stopped before Run returns.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIBind != "" {
		cfg.APIBind = opts.APIBind
	}
	if opts.NoBackend {
		cfg.BackendCommand = ""
	}

	logger, closer, err := logging.OpenFile(cfg.LogFile, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closer.Close() }()

	client, err := backend.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}
	logger.Info("prodwatch starting", "api", client.BaseURL(), "launch_backend", cfg.HasBackend())

	backendLog := ""
	if cfg.HasBackend() {
		backendLog = cfg.BackendLogPath()
	}
	host := launcher.New(launcher.Options{
		Command: cfg.BackendCommand,
		Args:    cfg.BackendArgs,
		Dir:     cfg.BackendDir,
		LogPath: backendLog,
		Logger:  logger,
	})
	if err := host.Start(ctx); err != nil {
		return fmt.Errorf("launch backend: %w", err)
	}
	defer stopBackend(host, logger)

	ctrl := monitor.New(monitor.Options{
		Context:        ctx,
		API:            client,
		Logger:         logger,
		PollInterval:   cfg.PollInterval,
		MaxFailures:    cfg.MaxFailures,
		StaleAfter:     cfg.StaleAfter,
		SessionTimeout: cfg.SessionTimeout,
		RequestTimeout: cfg.RequestTimeout,
		Artifacts:      cfg.Artifacts,
	})

	addr := client.HostPort()
	userPrefs := prefs.Load(opts.PrefsPath)

	uiOpts := ui.Options{
		Context:        ctx,
		Controller:     ctrl,
		Logger:         logger,
		BackendAddr:    addr,
		BackendLogPath: backendLog,
		ThemeName:      userPrefs.Theme,
		PrefsPath:      opts.PrefsPath,
		InitialURL:     opts.URL,
		WaitReady: func(ctx context.Context) error {
			return launcher.WaitReady(ctx, addr, cfg.ReadyAttempts, cfg.ReadyDelay, logger)
		},
		Background: func(ctx context.Context, send func(tea.Msg)) {
			watchBackend(ctx, client, host, cfg, send, logger)
		},
	}
	return ui.Run(uiOpts)
}

// watchBackend reports a launched backend that exits on its own, then
// starts the health poller once the startup readiness window has passed.
func watchBackend(ctx context.Context, client Pinger, host *launcher.Launcher, cfg config.Config, send func(tea.Msg), logger *slog.Logger) {
	if done := host.Done(); done != nil {
		go func() {
			select {
			case <-ctx.Done():
			case <-done:
				if ctx.Err() == nil {
					err := host.Wait()
					if err == nil {
						err = errors.New("exited cleanly")
					}
					send(ui.BackendStatusMsg{Err: fmt.Errorf("backend process stopped: %w", err)})
				}
			}
		}()
	}

	grace := time.Duration(cfg.ReadyAttempts) * cfg.ReadyDelay
	select {
	case <-ctx.Done():
		return
	case <-time.After(grace):
	}
	StartHealthPoller(ctx, client, defaultHealthInterval, func(err error) {
		send(ui.BackendStatusMsg{Err: err})
	}, logger)
}

func stopBackend(host *launcher.Launcher, logger *slog.Logger) {
	if !host.Running() {
		return
	}
	if err := host.Stop(); err != nil {
		logger.Warn("stop backend", "error", err)
	}
}
