package patterns

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry describes one category in a patterns file. Regex and Keywords may
// both be set, in which case either matching is enough.
type Entry struct {
	Regex    string   `yaml:"regex"`
	Keywords []string `yaml:"keywords"`
}

type File struct {
	Categories map[Category]Entry `yaml:"categories"`
}

func (e Entry) matcher() (Matcher, error) {
	var ms []Matcher
	if e.Regex != "" {
		m, err := Regex(e.Regex)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if len(e.Keywords) > 0 {
		ms = append(ms, Keywords(e.Keywords...))
	}
	switch len(ms) {
	case 0:
		return nil, fmt.Errorf("entry has neither regex nor keywords")
	case 1:
		return ms[0], nil
	default:
		return Any(ms...), nil
	}
}

// Parse reads YAML overrides and applies them on top of base.
// Categories absent from the document keep their base matcher.
func Parse(data []byte, base *Set) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	overrides := make(map[Category]Matcher, len(f.Categories))
	for c, e := range f.Categories {
		if !known[c] {
			return nil, fmt.Errorf("parse patterns: unknown category %q", c)
		}
		m, err := e.matcher()
		if err != nil {
			return nil, fmt.Errorf("parse patterns: category %q: %w", c, err)
		}
		overrides[c] = m
	}

	return base.With(overrides), nil
}

// Load returns Default when path is empty, otherwise Default with the
// file's overrides applied.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}
	return Parse(data, Default())
}
