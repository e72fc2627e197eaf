// Package browser drives a real browser through playwright. Pages it opens
// are exposed as dom.Document so the consent engine can run on them.
package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

func New(cfg Config) *PlaywrightBrowser {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = "firefox"
	}

	return &PlaywrightBrowser{
		cfg: cfg,
	}
}

func (b *PlaywrightBrowser) getContext() playwright.BrowserContext {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.context
}

func (b *PlaywrightBrowser) browserType(pw *playwright.Playwright) (playwright.BrowserType, error) {
	switch strings.ToLower(b.cfg.Engine) {
	case "firefox":
		return pw.Firefox, nil
	case "chromium", "chrome":
		return pw.Chromium, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", b.cfg.Engine)
	}
}

func (b *PlaywrightBrowser) getBrowserArgs() []string {
	if strings.HasPrefix(strings.ToLower(b.cfg.Engine), "chrom") {
		return []string{"--no-sandbox"}
	}
	return nil
}

func (b *PlaywrightBrowser) getEnvMap() map[string]string {
	if b.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": b.cfg.Display,
		}
	}
	return nil
}

// launchPersistent keeps cookies and storage in UserDataDir between runs.
func (b *PlaywrightBrowser) launchPersistent(bt playwright.BrowserType) error {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := bt.LaunchPersistentContext(b.cfg.UserDataDir, opts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()
	return nil
}

func (b *PlaywrightBrowser) launchStandard(bt playwright.BrowserType) error {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browser, err := bt.Launch(opts)
	if err != nil {
		return err
	}

	browserContext, err := browser.NewContext()
	if err != nil {
		_ = browser.Close()
		return err
	}

	b.mu.Lock()
	b.browser = browser
	b.context = browserContext
	b.mu.Unlock()
	return nil
}

func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	if b.cfg.BrowsersPath != "" {
		if err := os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath); err != nil {
			return err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	b.pw = pw

	bt, err := b.browserType(pw)
	if err != nil {
		return err
	}

	if b.cfg.UserDataDir != "" {
		return b.launchPersistent(bt)
	}

	return b.launchStandard(bt)
}

// Open creates a page in the shared context and navigates it to url.
func (b *PlaywrightBrowser) Open(ctx context.Context, url string) (Tab, error) {
	bc := b.getContext()
	if bc == nil {
		return nil, ErrNotLaunched
	}

	page, err := bc.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))

	if err := b.navigate(ctx, page, url); err != nil {
		_ = page.Close()
		return nil, err
	}

	return newPage(page, bc), nil
}

func (b *PlaywrightBrowser) navigate(ctx context.Context, page playwright.Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavigateTimeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		errChan <- err
	}()

	select {
	case <-navCtx.Done():
		return fmt.Errorf("navigate %s: %w", url, navCtx.Err())
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("navigate %s: %w", url, err)
		}
	}

	return waitForLoadState(page, "networkidle", b.cfg.Timeout)
}

func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			return err
		}
		b.context = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
		b.browser = nil
	}
	if b.pw != nil {
		err := b.pw.Stop()
		b.pw = nil
		return err
	}
	return nil
}
