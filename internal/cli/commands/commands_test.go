package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocookies/internal/agent"
	"nocookies/internal/cli/ui"
	"nocookies/internal/consent"
	"nocookies/internal/database"
	"nocookies/internal/sitememory"
)

type visitorStub struct {
	got string
	err error
}

func (v *visitorStub) Visit(_ context.Context, url string) (agent.Outcome, error) {
	v.got = url
	if v.err != nil {
		return agent.Outcome{}, v.err
	}
	return agent.Outcome{
		URL:            url,
		Origin:         sitememory.Origin(url),
		State:          agent.StateConfirmClicked,
		Trace:          []agent.State{agent.StateIdle, agent.StateExpanded, agent.StateConfirmClicked},
		Clicks:         3,
		TogglesOff:     1,
		StorageRemoved: 2,
	}, nil
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"example.com", "https://example.com"},
		{"  http://example.com/a ", "http://example.com/a"},
		{"file:///tmp/page.html", "file:///tmp/page.html"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in), tt.in)
	}
}

func TestVisit(t *testing.T) {
	var out bytes.Buffer
	v := &visitorStub{}
	h := NewVisitHandler(v, &out)

	o, err := h.Visit(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", v.got)
	assert.Equal(t, agent.StateConfirmClicked, o.State)
	assert.Contains(t, out.String(), "shop.example.com")
	assert.Contains(t, out.String(), "confirmed after opt-out")
	assert.Contains(t, out.String(), "toggles off:")

	_, err = h.Visit(context.Background(), "")
	assert.Error(t, err)

	v.err = errors.New("navigate: timeout")
	_, err = h.Visit(context.Background(), "slow.example.com")
	assert.ErrorContains(t, err, "timeout")
}

type controlStub struct {
	enabled bool
	origins []sitememory.Record
	cleared bool
}

func (c *controlStub) Enabled(context.Context) (bool, error) { return c.enabled, nil }

func (c *controlStub) SetEnabled(_ context.Context, v bool) error {
	c.enabled = v
	return nil
}

func (c *controlStub) ClearCache(context.Context) error {
	c.cleared = true
	c.origins = nil
	return nil
}

func (c *controlStub) Origins(context.Context) ([]sitememory.Record, error) {
	return c.origins, nil
}

func TestStatusHandler(t *testing.T) {
	var out bytes.Buffer
	ctl := &controlStub{enabled: true, origins: []sitememory.Record{
		{Origin: "news.example.com", ProcessedAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)},
	}}
	h := NewStatusHandler(ctl, &out)

	require.NoError(t, h.Status(context.Background()))
	assert.Contains(t, out.String(), "enabled")
	assert.Contains(t, out.String(), "news.example.com")

	require.NoError(t, h.SetEnabled(context.Background(), false))
	assert.False(t, ctl.enabled)

	out.Reset()
	require.NoError(t, h.ClearCache(context.Background()))
	assert.True(t, ctl.cleared)
	assert.Contains(t, out.String(), "Forgot 1 site(s)")

	out.Reset()
	require.NoError(t, h.Status(context.Background()))
	assert.Contains(t, out.String(), "No sites processed")
}

type runsStub struct {
	runs  []database.ConsentRun
	limit int
}

func (r *runsStub) ListRuns(_ context.Context, limit, _ int) ([]database.ConsentRun, error) {
	r.limit = limit
	return r.runs, nil
}

func TestRunsHandler(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, NewRunsHandler(nil, &out).List(context.Background(), 5))

	stub := &runsStub{runs: []database.ConsentRun{{
		Origin: "a.example.com", State: "reject_clicked", Clicks: 1,
		StartedAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC),
	}}}
	require.NoError(t, NewRunsHandler(stub, &out).List(context.Background(), 0))
	assert.Equal(t, 20, stub.limit)
	assert.Contains(t, out.String(), "a.example.com")
	assert.Contains(t, out.String(), "2026-01-02 09:30:00")
	assert.Contains(t, out.String(), "rejected")
}

type memoryStub struct{ svc *sitememory.Service }

func (m memoryStub) CheckIfProcessed(_ context.Context, url string) (bool, error) {
	return m.svc.IsProcessed(url), nil
}

func (m memoryStub) MarkAsProcessed(_ context.Context, url string) error {
	m.svc.MarkProcessed(url)
	return nil
}

type alwaysOn struct{}

func (alwaysOn) Enabled(context.Context) (bool, error) { return true, nil }

func TestScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body>
<div class="privacy-banner" id="banner"><p>We value your privacy.</p>
<button id="accept">Accept all</button><button id="deny">Reject all</button></div>
</body></html>`), 0o644))

	var out bytes.Buffer
	mem := memoryStub{svc: sitememory.New()}
	h := NewScanHandler(consent.NewScanner(nil, nil), mem, alwaysOn{}, agent.DefaultConfig(), nil, &out)

	o, err := h.Scan(context.Background(), path, "https://saved.example.com/")
	require.NoError(t, err)
	assert.Equal(t, agent.StateRejectClicked, o.State)
	assert.Contains(t, out.String(), ui.ColorYellow+"would click"+ui.ColorReset+` button#deny "Reject all"`)
	assert.NotContains(t, out.String(), "button#accept")
	assert.True(t, mem.svc.IsProcessed("https://saved.example.com/"))

	_, err = h.Scan(context.Background(), filepath.Join(t.TempDir(), "missing.html"), "")
	assert.Error(t, err)
}
