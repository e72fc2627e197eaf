package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocookies/internal/consent"
	"nocookies/internal/settings"
	"nocookies/internal/sitememory"
)

func start(t *testing.T) (*Coordinator, *sitememory.Service, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	mem := sitememory.New()
	c := New(mem, settings.NewMemory(), consent.NewScanner(nil, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return c, mem, cancel, stopped
}

func TestCheckMarkClear(t *testing.T) {
	c, _, _, _ := start(t)
	ctx := context.Background()

	processed, err := c.CheckIfProcessed(ctx, "https://news.example/article")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, c.MarkAsProcessed(ctx, "https://news.example/article"))

	processed, err = c.CheckIfProcessed(ctx, "https://news.example/other")
	require.NoError(t, err)
	assert.True(t, processed)

	require.NoError(t, c.ClearCache(ctx))
	processed, err = c.CheckIfProcessed(ctx, "https://news.example/article")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestUnknownActionIsAnErrorResponse(t *testing.T) {
	c, _, _, _ := start(t)

	resp, err := c.Send(context.Background(), Request{Action: "explode"})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "unknown action")
	assert.False(t, resp.Success)
}

func TestSessionEndClearsMemory(t *testing.T) {
	c, mem, cancel, stopped := start(t)
	require.NoError(t, c.MarkAsProcessed(context.Background(), "https://a.example/"))
	require.Equal(t, 1, mem.Len())

	cancel()
	<-stopped

	assert.Zero(t, mem.Len())
	_, err := c.CheckIfProcessed(context.Background(), "https://a.example/")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOriginsAreServedByTheLoop(t *testing.T) {
	c, _, cancel, stopped := start(t)
	ctx := context.Background()
	require.NoError(t, c.MarkAsProcessed(ctx, "https://B.example/x"))
	require.NoError(t, c.MarkAsProcessed(ctx, "https://a.example/y"))

	origins, err := c.Origins(ctx)
	require.NoError(t, err)
	require.Len(t, origins, 2)
	assert.Equal(t, "a.example", origins[0].Origin)
	assert.Equal(t, "b.example", origins[1].Origin)

	resp, err := c.Send(ctx, Request{Action: ActionListOrigins})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Origins, 2)

	cancel()
	<-stopped
	_, err = c.Origins(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSendHonoursContext(t *testing.T) {
	// never started, so the inbox is never drained
	c := New(sitememory.New(), settings.NewMemory(), nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.CheckIfProcessed(ctx, "https://a.example/")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunWritesEnableDefault(t *testing.T) {
	c, _, _, _ := start(t)
	// the first round trip guarantees Run has passed its setup
	_, err := c.CheckIfProcessed(context.Background(), "https://a.example/")
	require.NoError(t, err)

	v, ok, err := c.flags.GetBool(context.Background(), settings.KeyExtensionEnabled)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	require.NoError(t, c.SetEnabled(context.Background(), false))
	enabled, err := c.Enabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

type countingJar struct {
	mu      sync.Mutex
	deleted []string
}

func (j *countingJar) Cookies(context.Context) ([]consent.Cookie, error) {
	return []consent.Cookie{{Name: "_ga", Domain: "example.com", Path: "/"}, {Name: "session", Domain: "example.com", Path: "/"}}, nil
}

func (j *countingJar) DeleteCookie(_ context.Context, c consent.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.deleted = append(j.deleted, c.Name)
	return nil
}

func (j *countingJar) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.deleted)
}

func TestWatchCookiesSweepsWhileEnabled(t *testing.T) {
	c := New(sitememory.New(), settings.NewMemory(), consent.NewScanner(nil, nil), nil)
	jar := &countingJar{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.WatchCookies(ctx, jar, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return jar.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	jar.mu.Lock()
	for _, name := range jar.deleted {
		assert.Equal(t, "_ga", name)
	}
	jar.mu.Unlock()
}

func TestWatchCookiesIdleWhenDisabled(t *testing.T) {
	flags := settings.NewMemory()
	require.NoError(t, settings.SetEnabled(context.Background(), flags, false))
	c := New(sitememory.New(), flags, consent.NewScanner(nil, nil), nil)
	jar := &countingJar{}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	c.WatchCookies(ctx, jar, 5*time.Millisecond)

	assert.Zero(t, jar.count())
}
