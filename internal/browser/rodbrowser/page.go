package rodbrowser

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"nocookies/internal/consent"
	"nocookies/internal/dom"
)

type Page struct {
	page    *rod.Page
	browser *rod.Browser
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) Buttons() ([]dom.Element, error) {
	return p.query(dom.ButtonSelector)
}

func (p *Page) Toggles() ([]dom.Element, error) {
	return p.query(dom.ToggleSelector)
}

func (p *Page) query(selector string) ([]dom.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

func (p *Page) ElementByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	sel := `[id="` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id) + `"]`
	els, err := p.page.Elements(sel)
	if err != nil || len(els) == 0 {
		return nil
	}
	return &element{el: els[0]}
}

func (p *Page) HasDialogHint() (bool, error) {
	els, err := p.page.Elements(dom.DialogHintSelector)
	if err != nil {
		return false, err
	}
	return len(els) > 0, nil
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
	raw, err := p.browser.GetCookies()
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
	return proto.NetworkDeleteCookies{
		Name:   c.Name,
		Domain: c.Domain,
		Path:   c.Path,
	}.Call(p.page.Context(ctx))
}

func (p *Page) Close() error {
	return p.page.Close()
}

type element struct {
	el *rod.Element
}

func (e *element) Tag() string {
	res, err := e.el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Attr(name string) string {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

// Text is textContent, not rod's innerText, so hidden descendants count.
func (e *element) Text() string {
	res, err := e.el.Eval(`() => this.textContent || ""`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) Visible() bool {
	ok, err := e.el.Visible()
	return err == nil && ok
}

func (e *element) Checked() bool {
	res, err := e.el.Eval(`() => this.checked === true`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *element) Parent() dom.Element {
	parent, err := e.el.Parent()
	if err != nil || parent == nil {
		return nil
	}
	return &element{el: parent}
}

func (e *element) Click() error {
	if _, err := e.el.Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

type storage struct {
	page *rod.Page
	area string
}

func (s *storage) Keys() ([]string, error) {
	res, err := s.page.Eval(`area => {
		try {
			return Object.keys(window[area]);
		} catch (e) {
			return null;
		}
	}`, s.area)
	if err != nil {
		return nil, err
	}
	if res.Value.Nil() {
		return nil, dom.ErrStorageDenied
	}
	var keys []string
	for _, k := range res.Value.Arr() {
		keys = append(keys, k.Str())
	}
	return keys, nil
}

func (s *storage) Remove(key string) error {
	res, err := s.page.Eval(`(area, key) => {
		try {
			window[area].removeItem(key);
			return true;
		} catch (e) {
			return false;
		}
	}`, s.area, key)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return dom.ErrStorageDenied
	}
	return nil
}
