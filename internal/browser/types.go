package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"nocookies/internal/consent"
	"nocookies/internal/dom"
)

var ErrNotLaunched = errors.New("browser not launched")

// Driver owns one browser context. Every Tab it opens shares that
// context's cookie jar.
type Driver interface {
	Launch(ctx context.Context) error
	Open(ctx context.Context, url string) (Tab, error)
	Close() error
}

// Tab is a loaded page the consent engine can scan and mutate.
type Tab interface {
	dom.Document
	consent.CookieJar
	Close() error
}

type PlaywrightBrowser struct {
	mu      sync.RWMutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     Config
}

type Config struct {
	Engine          string
	Headless        bool
	UserDataDir     string
	BrowsersPath    string
	Display         string
	Timeout         time.Duration
	NavigateTimeout time.Duration
}
