// Package rodbrowser is the Chrome DevTools driver, built on rod. It can
// launch a local Chrome or attach to a remote one, and applies the stealth
// evasions to every page unless told otherwise.
package rodbrowser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"nocookies/internal/browser"
)

type Config struct {
	// RemoteURL is the DevTools websocket of an existing Chrome.
	// Empty launches a local one.
	RemoteURL       string
	Headless        bool
	Stealth         bool
	Display         string
	UserDataDir     string
	NavigateTimeout time.Duration
}

type Browser struct {
	cfg  Config
	log  *zap.Logger
	mu   sync.RWMutex
	b    *rod.Browser
	lnch *launcher.Launcher
}

func New(cfg Config, log *zap.Logger) *Browser {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{cfg: cfg, log: log.Named("rod")}
}

func (r *Browser) Launch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wsURL := r.cfg.RemoteURL
	if wsURL != "" {
		r.log.Info("connecting to remote chrome", zap.String("url", wsURL))
	} else {
		l := launcher.New().Context(ctx).Headless(r.cfg.Headless)
		if r.cfg.Display != "" {
			l = l.Env(append(os.Environ(), "DISPLAY="+r.cfg.Display)...)
		}
		if r.cfg.UserDataDir != "" {
			l = l.UserDataDir(r.cfg.UserDataDir)
		}
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		r.lnch = l
		r.log.Info("launched local chrome", zap.String("url", wsURL), zap.Bool("stealth", r.cfg.Stealth))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		r.cleanupLocked()
		return fmt.Errorf("connect chrome: %w", err)
	}
	r.b = b
	return nil
}

func (r *Browser) browser() *rod.Browser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.b
}

// Open creates a tab, navigates it to url and waits for the load event.
// A load timeout is logged, not returned.
func (r *Browser) Open(ctx context.Context, url string) (browser.Tab, error) {
	b := r.browser()
	if b == nil {
		return nil, browser.ErrNotLaunched
	}

	var (
		page *rod.Page
		err  error
	)
	if r.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		r.log.Warn("wait load", zap.String("url", url), zap.Error(err))
	}

	return &Page{page: page, browser: b}, nil
}

func (r *Browser) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleanupLocked()
}

func (r *Browser) cleanupLocked() error {
	var err error
	// a remote browser is left running for its owner
	if r.b != nil && r.lnch != nil {
		err = r.b.Close()
	}
	r.b = nil
	if r.lnch != nil {
		r.lnch.Cleanup()
		r.lnch = nil
	}
	return err
}

var _ browser.Driver = (*Browser)(nil)
