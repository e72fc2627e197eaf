// Package patterns holds the lexical classifiers used to recognise consent
// dialogs, their buttons and the cookie or storage keys they govern.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

type Category string

const (
	Reject       Category = "reject"
	Confirm      Category = "confirm"
	Expand       Category = "expand"
	Dialog       Category = "dialog"
	NonEssential Category = "non-essential"
	Essential    Category = "essential"
	// EssentialKey guards page storage keys during sanitization.
	EssentialKey Category = "essential-key"
)

// Categories lists every category a complete Set must carry.
var Categories = []Category{Reject, Confirm, Expand, Dialog, NonEssential, Essential, EssentialKey}

// Matcher reports whether free text belongs to a category.
// Implementations are case-insensitive.
type Matcher interface {
	Match(text string) bool
	String() string
}

type regexMatcher struct {
	re *regexp.Regexp
}

// Regex compiles expr as a case-insensitive matcher.
func Regex(expr string) (Matcher, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}
	return regexMatcher{re: re}, nil
}

func MustRegex(expr string) Matcher {
	m, err := Regex(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func (m regexMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

func (m regexMatcher) String() string {
	return m.re.String()
}

type keywordMatcher struct {
	words []string
}

// Keywords matches when any of words occurs as a substring.
func Keywords(words ...string) Matcher {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return keywordMatcher{words: lowered}
}

func (m keywordMatcher) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range m.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (m keywordMatcher) String() string {
	return strings.Join(m.words, "|")
}

type anyMatcher []Matcher

func (m anyMatcher) Match(text string) bool {
	for _, sub := range m {
		if sub.Match(text) {
			return true
		}
	}
	return false
}

func (m anyMatcher) String() string {
	parts := make([]string, len(m))
	for i, sub := range m {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " || ")
}

// Any matches when at least one of ms matches.
func Any(ms ...Matcher) Matcher {
	return anyMatcher(ms)
}

// Set maps each category to its compiled matcher.
type Set struct {
	matchers map[Category]Matcher
}

func NewSet(matchers map[Category]Matcher) (*Set, error) {
	for _, c := range Categories {
		if matchers[c] == nil {
			return nil, fmt.Errorf("pattern set: missing category %q", c)
		}
	}
	copied := make(map[Category]Matcher, len(matchers))
	for c, m := range matchers {
		copied[c] = m
	}
	return &Set{matchers: copied}, nil
}

func (s *Set) Match(c Category, text string) bool {
	m, ok := s.matchers[c]
	if !ok || text == "" {
		return false
	}
	return m.Match(text)
}

func (s *Set) Matcher(c Category) Matcher {
	return s.matchers[c]
}

// IsNonEssential applies the toggle rule: essential always wins.
func (s *Set) IsNonEssential(label string) bool {
	return s.Match(NonEssential, label) && !s.Match(Essential, label)
}

func (s *Set) IsEssentialCookie(name string) bool {
	return s.Match(Essential, name)
}

func (s *Set) IsEssentialKey(key string) bool {
	return s.Match(EssentialKey, key)
}

// With returns a copy of s with the given categories replaced.
func (s *Set) With(overrides map[Category]Matcher) *Set {
	merged := make(map[Category]Matcher, len(s.matchers))
	for c, m := range s.matchers {
		merged[c] = m
	}
	for c, m := range overrides {
		merged[c] = m
	}
	return &Set{matchers: merged}
}
