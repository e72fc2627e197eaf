package agent

import (
	"context"
	"time"
)

type State string

const (
	StateIdle             State = "idle"
	StateCheckGate        State = "check_gate"
	StateDisabled         State = "disabled"
	StateAlreadyProcessed State = "already_processed"
	StateBusy             State = "busy"
	StateNoDialog         State = "no_dialog"
	StateScanned          State = "scanned"
	StateRejectClicked    State = "reject_clicked"
	StateExpanded         State = "expanded"
	StateToggledOff       State = "toggled_off"
	StateConfirmClicked   State = "confirm_clicked"
	StateNoAction         State = "no_action"
)

// Terminal reports whether the state ends the pass with the origin marked.
func (s State) Terminal() bool {
	switch s {
	case StateRejectClicked, StateConfirmClicked, StateNoAction:
		return true
	}
	return false
}

// Success reports whether the dialog was answered.
func (s State) Success() bool {
	return s == StateRejectClicked || s == StateConfirmClicked
}

// Outcome describes one pass of the state machine over a page.
type Outcome struct {
	URL            string
	Origin         string
	State          State
	Trace          []State
	Clicks         int
	TogglesOff     int
	StorageRemoved int
	StartedAt      time.Time
	Duration       time.Duration
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

// Memory is the page agent's view of Site Memory.
type Memory interface {
	CheckIfProcessed(ctx context.Context, url string) (bool, error)
	MarkAsProcessed(ctx context.Context, url string) error
}

// Gate exposes the enable flag.
type Gate interface {
	Enabled(ctx context.Context) (bool, error)
}

// Recorder receives every terminal outcome.
type Recorder interface {
	RecordRun(ctx context.Context, o Outcome) error
}

type Config struct {
	ExpandDelay       time.Duration
	ToggleDelay       time.Duration
	RescanInterval    time.Duration
	RequireDialogHint bool
}

func DefaultConfig() Config {
	return Config{
		ExpandDelay:       800 * time.Millisecond,
		ToggleDelay:       500 * time.Millisecond,
		RescanInterval:    2500 * time.Millisecond,
		RequireDialogHint: true,
	}
}
