package rodbrowser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocookies/internal/browser"
)

func TestOpenBeforeLaunch(t *testing.T) {
	r := New(Config{}, nil)
	assert.Equal(t, 60*time.Second, r.cfg.NavigateTimeout)

	_, err := r.Open(context.Background(), "https://example.com")
	require.ErrorIs(t, err, browser.ErrNotLaunched)
	assert.NoError(t, r.Close())
}
