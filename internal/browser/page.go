package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"nocookies/internal/consent"
	"nocookies/internal/dom"
)

// Page adapts a playwright page to dom.Document and its browser context
// to consent.CookieJar.
type Page struct {
	page    playwright.Page
	context playwright.BrowserContext
}

func newPage(page playwright.Page, bc playwright.BrowserContext) *Page {
	return &Page{page: page, context: bc}
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Buttons() ([]dom.Element, error) {
	return p.query(dom.ButtonSelector)
}

func (p *Page) Toggles() ([]dom.Element, error) {
	return p.query(dom.ToggleSelector)
}

func (p *Page) query(selector string) ([]dom.Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]dom.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &element{h: h})
	}
	return out, nil
}

func (p *Page) ElementByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	h, err := p.page.QuerySelector(`[id="` + cssString(id) + `"]`)
	if err != nil || h == nil {
		return nil
	}
	return &element{h: h}
}

func (p *Page) HasDialogHint() (bool, error) {
	h, err := p.page.QuerySelector(dom.DialogHintSelector)
	if err != nil {
		return false, err
	}
	return h != nil, nil
}

func (p *Page) LocalStorage() dom.Storage {
	return &storage{page: p.page, area: "localStorage"}
}

func (p *Page) SessionStorage() dom.Storage {
	return &storage{page: p.page, area: "sessionStorage"}
}

func (p *Page) Cookies(ctx context.Context) ([]consent.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := p.context.Cookies()
	if err != nil {
		return nil, err
	}
	out := make([]consent.Cookie, 0, len(raw))
	for _, c := range raw {
		out = append(out, consent.Cookie{
			Name:   c.Name,
			Domain: c.Domain,
			Path:   c.Path,
			Secure: c.Secure,
		})
	}
	return out, nil
}

func (p *Page) DeleteCookie(ctx context.Context, c consent.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.context.ClearCookies(playwright.BrowserContextClearCookiesOptions{
		Name:   c.Name,
		Domain: c.Domain,
		Path:   c.Path,
	})
}

func (p *Page) Close() error {
	return p.page.Close()
}

func cssString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
