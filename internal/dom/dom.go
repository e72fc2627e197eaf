// Package dom describes the slice of a live page the consent engine needs:
// button-like and toggle-like elements, their ancestors, and the page's
// key-value storage. Drivers (playwright, rod, the offline html document)
// implement it.
package dom

import "errors"

// Selectors shared by the browser drivers.
const (
	ButtonSelector     = `button, a[role="button"]`
	ToggleSelector     = `input[type="checkbox"], input[type="radio"], [role="switch"]`
	DialogHintSelector = `div[class*="cookie"], div[class*="consent"], div[class*="privacy"]`
)

// ErrStorageDenied is returned by Storage implementations when the page
// refuses access (sandboxed frames, opaque origins).
var ErrStorageDenied = errors.New("storage access denied")

// Element is a node observed during one scan. Implementations never cache
// across scans. A stale element reports zero values: no text, not visible,
// no parent; Click returns an error.
type Element interface {
	Tag() string
	Attr(name string) string
	Text() string
	Visible() bool
	Checked() bool
	Parent() Element
	Click() error
}

type Storage interface {
	Keys() ([]string, error)
	Remove(key string) error
}

// Document is a page as seen by one scan.
type Document interface {
	URL() string
	Buttons() ([]Element, error)
	Toggles() ([]Element, error)
	ElementByID(id string) Element
	// HasDialogHint is the coarse "some consent container exists" query
	// described by DialogHintSelector.
	HasDialogHint() (bool, error)
	LocalStorage() Storage
	SessionStorage() Storage
}
