package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"nocookies/internal/dom"
)

// element wraps an element handle. Errors from a detached node collapse
// to zero values, matching dom.Element's stale contract.
type element struct {
	h playwright.ElementHandle
}

func (e *element) Tag() string {
	v, err := e.h.Evaluate(`el => el.tagName.toLowerCase()`)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (e *element) Attr(name string) string {
	v, err := e.h.GetAttribute(name)
	if err != nil {
		return ""
	}
	return v
}

func (e *element) Text() string {
	v, err := e.h.TextContent()
	if err != nil {
		return ""
	}
	return v
}

func (e *element) Visible() bool {
	ok, err := e.h.IsVisible()
	return err == nil && ok
}

func (e *element) Checked() bool {
	v, err := e.h.Evaluate(`el => el.checked === true`)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (e *element) Parent() dom.Element {
	js, err := e.h.EvaluateHandle(`el => el.parentElement`)
	if err != nil || js == nil {
		return nil
	}
	parent := js.AsElement()
	if parent == nil {
		return nil
	}
	return &element{h: parent}
}

// Click dispatches the element's native activation, the same as a
// script calling el.click(). No pointer events are synthesized.
func (e *element) Click() error {
	if _, err := e.h.Evaluate(`el => el.click()`); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

type storage struct {
	page playwright.Page
	area string
}

func (s *storage) Keys() ([]string, error) {
	v, err := s.page.Evaluate(`area => {
		try {
			return Object.keys(window[area]);
		} catch (e) {
			return null;
		}
	}`, s.area)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, dom.ErrStorageDenied
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s keys: unexpected %T", s.area, v)
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if str, ok := k.(string); ok {
			keys = append(keys, str)
		}
	}
	return keys, nil
}

func (s *storage) Remove(key string) error {
	v, err := s.page.Evaluate(`([area, key]) => {
		try {
			window[area].removeItem(key);
			return true;
		} catch (e) {
			return false;
		}
	}`, []interface{}{s.area, key})
	if err != nil {
		return err
	}
	if ok, _ := v.(bool); !ok {
		return dom.ErrStorageDenied
	}
	return nil
}
