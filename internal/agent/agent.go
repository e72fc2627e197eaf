// Package agent drives one page through the consent interaction:
// reject, or expand then switch off non-essential toggles then confirm.
// An Agent serves a single page; it refuses to start a pass while another
// pass on the same page is still running.
package agent

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"nocookies/internal/consent"
	"nocookies/internal/dom"
	"nocookies/internal/sitememory"
)

type Agent struct {
	scanner  *consent.Scanner
	memory   Memory
	gate     Gate
	recorder Recorder
	cfg      Config
	log      *zap.Logger

	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
	inFlight atomic.Bool
}

type Option func(*Agent)

func WithRecorder(r Recorder) Option {
	return func(a *Agent) { a.recorder = r }
}

// WithSleep replaces the delay between steps.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(a *Agent) { a.sleep = fn }
}

func New(scanner *consent.Scanner, memory Memory, gate Gate, cfg Config, log *zap.Logger, opts ...Option) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Agent{
		scanner: scanner,
		memory:  memory,
		gate:    gate,
		cfg:     cfg,
		log:     log.Named("agent"),
		sleep:   sleepCtx,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle runs one pass of the state machine over page. Every failure short
// of a critical one degrades to "no action this cycle" and is only logged.
func (a *Agent) Handle(ctx context.Context, page dom.Document) (Outcome, error) {
	o := Outcome{
		URL:       page.URL(),
		Origin:    sitememory.Origin(page.URL()),
		StartedAt: a.now(),
	}
	o.enter(StateIdle)

	if !a.inFlight.CompareAndSwap(false, true) {
		o.enter(StateBusy)
		return o, nil
	}
	defer a.inFlight.Store(false)

	log := a.log.With(zap.String("origin", o.Origin))

	o.enter(StateCheckGate)
	enabled, err := a.gate.Enabled(ctx)
	if err != nil {
		log.Warn("enable flag unreadable, assuming enabled", zap.Error(err))
		enabled = true
	}
	if !enabled {
		o.enter(StateDisabled)
		return o, nil
	}

	processed, err := a.memory.CheckIfProcessed(ctx, o.URL)
	if err != nil {
		if isCriticalError(err) {
			return o, stepError(StateCheckGate, err)
		}
		log.Warn("processed check failed, continuing as unprocessed", zap.Error(err))
		processed = false
	}
	if processed {
		log.Debug("website already processed in this session - skipping")
		o.enter(StateAlreadyProcessed)
		return o, nil
	}

	if a.cfg.RequireDialogHint {
		hint, err := page.HasDialogHint()
		if err != nil {
			log.Warn("dialog pre-check failed", zap.Error(err))
		}
		if !hint {
			log.Debug("no cookie dialog detected")
			o.enter(StateNoDialog)
			return o, nil
		}
	}

	o.enter(StateScanned)
	log.Info("processing cookie dialog")

	if a.step(log, StateRejectClicked, func() (bool, error) { return a.scanner.FindAndClickReject(page) }) {
		o.Clicks++
		o.enter(StateRejectClicked)
		return a.finish(ctx, page, o)
	}

	if a.step(log, StateExpanded, func() (bool, error) { return a.scanner.FindAndClickExpand(page) }) {
		o.Clicks++
		o.enter(StateExpanded)
		log.Info("expanded options, waiting for second screen")
		if err := a.sleep(ctx, a.cfg.ExpandDelay); err != nil {
			return o, stepError(StateExpanded, err)
		}
	}

	n, err := a.scanner.TurnOffNonEssential(page)
	if err != nil {
		log.Warn("toggle scan failed", zap.Error(err))
	}
	if n > 0 {
		o.Clicks += n
		o.TogglesOff = n
		o.enter(StateToggledOff)
		log.Info("disabled non-essential cookies", zap.Int("toggles", n))
		if err := a.sleep(ctx, a.cfg.ToggleDelay); err != nil {
			return o, stepError(StateToggledOff, err)
		}
	}

	if a.step(log, StateConfirmClicked, func() (bool, error) { return a.scanner.FindAndClickConfirm(page) }) {
		o.Clicks++
		o.enter(StateConfirmClicked)
		return a.finish(ctx, page, o)
	}

	o.enter(StateNoAction)
	return a.finish(ctx, page, o)
}

func (a *Agent) step(log *zap.Logger, state State, fn func() (bool, error)) bool {
	ok, err := fn()
	if err != nil {
		log.Warn("scan failed", zap.String("step", string(state)), zap.Error(err))
		return false
	}
	return ok
}

// finish sanitizes storage after a success and marks the origin for every
// terminal state.
func (a *Agent) finish(ctx context.Context, page dom.Document, o Outcome) (Outcome, error) {
	log := a.log.With(zap.String("origin", o.Origin))

	if o.State.Success() {
		o.StorageRemoved = a.scanner.SanitizeStorage(page)
	}

	if err := a.memory.MarkAsProcessed(ctx, o.URL); err != nil {
		if isCriticalError(err) {
			return o, stepError(o.State, err)
		}
		log.Warn("could not mark website as processed", zap.Error(err))
	}

	o.Duration = a.now().Sub(o.StartedAt)
	log.Info("consent pass finished",
		zap.String("state", string(o.State)),
		zap.Int("clicks", o.Clicks),
		zap.Int("toggles_off", o.TogglesOff),
		zap.Int("storage_removed", o.StorageRemoved),
		zap.Duration("took", o.Duration),
	)

	if a.recorder != nil {
		if err := a.recorder.RecordRun(ctx, o); err != nil {
			log.Warn("could not record run", zap.Error(err))
		}
	}
	return o, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
