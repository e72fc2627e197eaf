// Package consent finds the controls of a cookie-consent dialog and
// operates them: reject, expand, switch off non-essential toggles, confirm.
// Classification is purely lexical, see package patterns.
package consent

import (
	"strings"

	"go.uber.org/zap"

	"nocookies/internal/dom"
	"nocookies/internal/patterns"
)

const (
	// DialogDepth bounds the ancestor walk of InDialogContext.
	DialogDepth = 15
	// LabelDepth bounds the search for an enclosing <label>.
	LabelDepth = 5
)

type Scanner struct {
	patterns *patterns.Set
	log      *zap.Logger
}

func NewScanner(set *patterns.Set, log *zap.Logger) *Scanner {
	if set == nil {
		set = patterns.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{patterns: set, log: log}
}

func (s *Scanner) Patterns() *patterns.Set {
	return s.patterns
}

// InDialogContext walks up to DialogDepth ancestors and reports whether any
// of them looks like part of a consent UI by text, class or id.
func (s *Scanner) InDialogContext(el dom.Element) bool {
	parent := el.Parent()
	for i := 0; i < DialogDepth && parent != nil; i++ {
		if s.patterns.Match(patterns.Dialog, strings.ToLower(parent.Text())) ||
			s.patterns.Match(patterns.Dialog, strings.ToLower(parent.Attr("class"))) ||
			s.patterns.Match(patterns.Dialog, strings.ToLower(parent.Attr("id"))) {
			return true
		}
		parent = parent.Parent()
	}
	return false
}

func buttonText(el dom.Element) (text, aria string) {
	return strings.ToLower(strings.TrimSpace(el.Text())),
		strings.ToLower(el.Attr("aria-label"))
}
