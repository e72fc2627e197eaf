package htmldoc

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"nocookies/internal/dom"
)

var ErrDetached = errors.New("element is no longer attached to the document")

type Element struct {
	doc *Document
	n   *html.Node
}

func (e *Element) Tag() string {
	return strings.ToLower(e.n.Data)
}

func (e *Element) Attr(name string) string {
	return attr(e.n, name)
}

// Text mirrors textContent: every descendant text node, concatenated.
func (e *Element) Text() string {
	var b strings.Builder
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// Visible is false when the element is detached, is a hidden input, or it
// or an ancestor carries the hidden attribute or an inline display:none /
// visibility:hidden style.
func (e *Element) Visible() bool {
	if !e.attached() {
		return false
	}
	if e.n.Data == "input" && strings.EqualFold(attr(e.n, "type"), "hidden") {
		return false
	}
	for n := e.n; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if hasAttr(n, "hidden") {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func (e *Element) Checked() bool {
	return hasAttr(e.n, "checked")
}

func (e *Element) Parent() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Click flips checkbox and switch state, checks radios, then runs hooks.
func (e *Element) Click() error {
	if !e.attached() {
		return ErrDetached
	}

	switch {
	case e.n.Data == "input" && strings.EqualFold(attr(e.n, "type"), "checkbox"):
		if e.Checked() {
			e.RemoveAttr("checked")
		} else {
			e.SetAttr("checked", "")
		}
	case e.n.Data == "input" && strings.EqualFold(attr(e.n, "type"), "radio"):
		e.SetAttr("checked", "")
	case attr(e.n, "role") == "switch":
		if attr(e.n, "aria-checked") == "true" {
			e.SetAttr("aria-checked", "false")
		} else {
			e.SetAttr("aria-checked", "true")
		}
	}

	e.doc.recordClick(e)
	return nil
}

func (e *Element) SetAttr(name, val string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: val})
}

func (e *Element) RemoveAttr(name string) {
	kept := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	e.n.Attr = kept
}

// Detach removes the element from the tree, making existing references stale.
func (e *Element) Detach() {
	if e.n.Parent != nil {
		e.n.Parent.RemoveChild(e.n)
	}
}

func (e *Element) attached() bool {
	for n := e.n; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}
