// Package htmldoc is an in-memory dom.Document built on golang.org/x/net/html.
// It backs offline scans of saved pages and the engine's tests. Clicking
// updates checkbox and switch state the way a browser would, and click
// hooks let callers mount follow-up content (a second dialog screen).
package htmldoc

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"nocookies/internal/dom"
)

// Click records one activation.
type Click struct {
	Tag  string
	ID   string
	Text string
}

type Document struct {
	url     string
	root    *html.Node
	local   *Storage
	session *Storage

	mu     sync.Mutex
	clicks []Click
	hooks  []func(*Element)
}

func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		url:     url,
		root:    root,
		local:   NewStorage(),
		session: NewStorage(),
	}, nil
}

func ParseString(s, url string) (*Document, error) {
	return Parse(strings.NewReader(s), url)
}

func (d *Document) URL() string {
	return d.url
}

// OnClick registers fn to run after every successful Click.
func (d *Document) OnClick(fn func(*Element)) {
	d.mu.Lock()
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

// Clicks returns every activation so far, in order.
func (d *Document) Clicks() []Click {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Click, len(d.clicks))
	copy(out, d.clicks)
	return out
}

func (d *Document) Buttons() ([]dom.Element, error) {
	return d.collect(isButton), nil
}

func (d *Document) Toggles() ([]dom.Element, error) {
	return d.collect(isToggle), nil
}

func (d *Document) ElementByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.wrap(found)
}

// Find is ElementByID returning the concrete type, for callers that need
// to mutate the element.
func (d *Document) Find(id string) *Element {
	el, _ := d.ElementByID(id).(*Element)
	return el
}

func (d *Document) HasDialogHint() (bool, error) {
	found := false
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "div" {
			return true
		}
		class := attr(n, "class")
		for _, hint := range []string{"cookie", "consent", "privacy"} {
			if strings.Contains(class, hint) {
				found = true
				return false
			}
		}
		return true
	})
	return found, nil
}

func (d *Document) LocalStorage() dom.Storage {
	return d.local
}

func (d *Document) SessionStorage() dom.Storage {
	return d.session
}

// Local returns the concrete local storage for seeding.
func (d *Document) Local() *Storage {
	return d.local
}

// Session returns the concrete session storage for seeding.
func (d *Document) Session() *Storage {
	return d.session
}

func (d *Document) collect(pred func(*html.Node) bool) []dom.Element {
	var out []dom.Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{doc: d, n: n}
}

func (d *Document) recordClick(e *Element) {
	d.mu.Lock()
	d.clicks = append(d.clicks, Click{
		Tag:  e.Tag(),
		ID:   e.Attr("id"),
		Text: strings.TrimSpace(e.Text()),
	})
	hooks := slices.Clone(d.hooks)
	d.mu.Unlock()

	for _, fn := range hooks {
		fn(e)
	}
}

func isButton(n *html.Node) bool {
	switch n.Data {
	case "button":
		return true
	case "a":
		return attr(n, "role") == "button"
	}
	return false
}

func isToggle(n *html.Node) bool {
	if attr(n, "role") == "switch" {
		return true
	}
	if n.Data != "input" {
		return false
	}
	t := strings.ToLower(attr(n, "type"))
	return t == "checkbox" || t == "radio"
}

// walk visits n and its descendants in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}
