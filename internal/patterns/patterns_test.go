package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategories(t *testing.T) {
	s := Default()

	tests := []struct {
		category Category
		text     string
		want     bool
	}{
		{Reject, "Reject All", true},
		{Reject, "only necessary", true},
		{Reject, "Do not accept", true},
		{Reject, "opt out", true},
		{Reject, "Necessary cookies only", true},
		{Reject, "Accept all", false},
		{Confirm, "Save my choices", true},
		{Confirm, "Continue", true},
		{Confirm, "Go back", false},
		{Expand, "Show more", true},
		{Expand, "Customize", true},
		{Expand, "customise", true},
		{Expand, "Preferences", true},
		{Dialog, "We use cookies", true},
		{Dialog, "gdpr-banner", true},
		{Dialog, "newsletter", false},
		{NonEssential, "Marketing Cookies", true},
		{NonEssential, "Personalisation", true},
		{NonEssential, "Personalization", true},
		{NonEssential, "Strictly required", false},
		{Essential, "Session cookies", true},
		{Essential, "preferences", true},
		{Essential, "x-csrf-token", true},
		{EssentialKey, "auth_token", true},
		{EssentialKey, "login_state", true},
		{EssentialKey, "cart_id", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Match(tt.category, tt.text))
		})
	}
}

func TestEssentialWinsOverNonEssential(t *testing.T) {
	s := Default()

	assert.True(t, s.IsNonEssential("Marketing cookies"))
	assert.False(t, s.IsNonEssential("Functional and performance cookies"))
	assert.False(t, s.IsNonEssential("Tracking session"))
	assert.False(t, s.IsNonEssential(""))
}

func TestPreferencesIsBothExpandAndEssential(t *testing.T) {
	s := Default()
	assert.True(t, s.Match(Expand, "preferences"))
	assert.True(t, s.Match(Essential, "preferences"))
}

func TestKeywordsMatcher(t *testing.T) {
	m := Keywords("Opt Out", "  ", "deny")
	assert.True(t, m.Match("please OPT OUT now"))
	assert.True(t, m.Match("Deny"))
	assert.False(t, m.Match("allow"))
	assert.Equal(t, "opt out|deny", m.String())
}

func TestNewSetRequiresEveryCategory(t *testing.T) {
	_, err := NewSet(map[Category]Matcher{Reject: Keywords("reject")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing category")
}

func TestParseOverrides(t *testing.T) {
	doc := []byte(`
categories:
  reject:
    keywords: [ablehnen, refuser]
  dialog:
    regex: "cookie|datenschutz"
    keywords: [einwilligung]
`)
	s, err := Parse(doc, Default())
	require.NoError(t, err)

	assert.True(t, s.Match(Reject, "Alle ablehnen"))
	assert.False(t, s.Match(Reject, "Reject all"))
	assert.True(t, s.Match(Dialog, "Datenschutz"))
	assert.True(t, s.Match(Dialog, "Einwilligung"))
	// untouched categories keep their defaults
	assert.True(t, s.Match(Confirm, "save"))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("categories:\n  bogus:\n    keywords: [x]\n"), Default())
	assert.ErrorContains(t, err, "unknown category")

	_, err = Parse([]byte("categories:\n  reject: {}\n"), Default())
	assert.ErrorContains(t, err, "neither regex nor keywords")

	_, err = Parse([]byte("categories:\n  reject:\n    regex: \"(\"\n"), Default())
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.True(t, s.Match(Reject, "decline"))

	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  confirm:\n    keywords: [speichern]\n"), 0o600))

	s, err = Load(path)
	require.NoError(t, err)
	assert.True(t, s.Match(Confirm, "Speichern"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
