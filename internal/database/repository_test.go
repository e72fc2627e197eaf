package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nocookies/internal/agent"
	"nocookies/internal/settings"
)

var (
	_ settings.Store = (*SettingsRepository)(nil)
	_ agent.Recorder = (*RunRepository)(nil)
)

func TestRunFromOutcome(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := runFromOutcome(agent.Outcome{
		URL:            "https://shop.example.com/cart",
		Origin:         "shop.example.com",
		State:          agent.StateConfirmClicked,
		Trace:          []agent.State{agent.StateIdle, agent.StateScanned, agent.StateConfirmClicked},
		Clicks:         3,
		TogglesOff:     1,
		StorageRemoved: 2,
		StartedAt:      started,
		Duration:       1500 * time.Millisecond,
	})

	assert.Equal(t, "shop.example.com", run.Origin)
	assert.Equal(t, "confirm_clicked", run.State)
	assert.Equal(t, "idle,scanned,confirm_clicked", run.Trace)
	assert.Equal(t, 3, run.Clicks)
	assert.Equal(t, int64(1500), run.DurationMS)
	assert.Equal(t, started, run.StartedAt)
	assert.Equal(t, uuid.Nil, run.ID)
}

func TestConsentRunGetsID(t *testing.T) {
	run := &ConsentRun{}
	require.NoError(t, run.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, run.ID)

	fixed := uuid.New()
	run = &ConsentRun{ID: fixed}
	require.NoError(t, run.BeforeCreate(nil))
	assert.Equal(t, fixed, run.ID)
}
