package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"nocookies/internal/agent"
	"nocookies/internal/browser"
	"nocookies/internal/browser/rodbrowser"
	"nocookies/internal/cli/commands"
	"nocookies/internal/config"
	"nocookies/internal/consent"
	"nocookies/internal/coordinator"
	"nocookies/internal/database"
	"nocookies/internal/logger"
	"nocookies/internal/migrations"
	"nocookies/internal/patterns"
	"nocookies/internal/runner"
	"nocookies/internal/settings"
	"nocookies/internal/sitememory"
)

// app holds what every subcommand shares. Built lazily so commands that
// never touch the database or a browser do not pay for them.
type app struct {
	cfg *config.Cfg
	log *logger.Zap

	db    *database.Database
	flags settings.Store
	runs  *database.RunRepository

	scanner *consent.Scanner
	coord   *coordinator.Coordinator
	stop    func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

// openStore connects to postgres when configured; otherwise flags live in
// memory for the life of the process.
func (a *app) openStore() error {
	if a.flags != nil {
		return nil
	}
	if !a.cfg.Database.Enabled() {
		a.log.Debug("DB_HOST not set, using in-memory settings")
		a.flags = settings.NewMemory()
		return nil
	}

	if err := migrations.Run(a.cfg, a.log.Logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	db, err := database.New(a.cfg, a.log.Logger)
	if err != nil {
		return err
	}
	a.db = db
	a.flags = database.NewSettingsRepository(db.DB)
	a.runs = database.NewRunRepository(db.DB)
	return nil
}

func (a *app) loadScanner() error {
	if a.scanner != nil {
		return nil
	}
	set, err := patterns.Load(a.cfg.Patterns.File)
	if err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	a.scanner = consent.NewScanner(set, a.log.Logger)
	return nil
}

// startCoordinator runs the coordinator until close is called.
func (a *app) startCoordinator(ctx context.Context) error {
	if err := a.openStore(); err != nil {
		return err
	}
	if err := a.loadScanner(); err != nil {
		return err
	}

	a.coord = coordinator.New(sitememory.New(), a.flags, a.scanner, a.log.Logger)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.coord.Run(runCtx); err != nil {
			a.log.Error("coordinator stopped", zap.Error(err))
		}
	}()
	a.stop = func() {
		cancel()
		<-done
	}
	return nil
}

func (a *app) agentConfig() agent.Config {
	return agent.Config{
		ExpandDelay:       a.cfg.Agent.ExpandDelay,
		ToggleDelay:       a.cfg.Agent.ToggleDelay,
		RescanInterval:    a.cfg.Agent.RescanInterval,
		RequireDialogHint: a.cfg.Agent.RequireDialogHint,
	}
}

func (a *app) newDriver() (browser.Driver, error) {
	b := a.cfg.Browser
	switch strings.ToLower(b.Driver) {
	case "", "playwright":
		return browser.New(browser.Config{
			Engine:       b.Engine,
			Headless:     b.Headless,
			UserDataDir:  b.UserDataDir,
			BrowsersPath: b.BrowsersPath,
			Display:      b.Display,
		}), nil
	case "rod":
		return rodbrowser.New(rodbrowser.Config{
			RemoteURL:   b.RemoteURL,
			Headless:    b.Headless,
			Stealth:     b.Stealth,
			Display:     b.Display,
			UserDataDir: b.UserDataDir,
		}, a.log.Logger), nil
	default:
		return nil, fmt.Errorf("unknown BROWSER_DRIVER %q (want playwright or rod)", b.Driver)
	}
}

// newRunner launches the configured browser. The caller closes the
// returned driver.
func (a *app) newRunner(ctx context.Context) (*runner.Runner, browser.Driver, error) {
	driver, err := a.newDriver()
	if err != nil {
		return nil, nil, err
	}
	if err := driver.Launch(ctx); err != nil {
		_ = driver.Close()
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	opts := runner.Options{
		Agent:         a.agentConfig(),
		SweepInterval: a.cfg.Agent.CookieSweepInterval,
	}
	if a.runs != nil {
		opts.Recorder = a.runs
	}
	return runner.New(driver, a.coord, a.scanner, opts, a.log.Logger), driver, nil
}

// runLister is nil without a database.
func (a *app) runLister() commands.RunLister {
	if a.runs == nil {
		return nil
	}
	return a.runs
}

func (a *app) close() {
	if a.stop != nil {
		a.stop()
	}
	if a.db != nil {
		a.db.Close(a.log.Logger)
	}
	_ = a.log.Sync()
}

func closeDriver(a *app, d browser.Driver) {
	if err := d.Close(); err != nil {
		a.log.Warn("close browser", zap.Error(err))
	}
}
