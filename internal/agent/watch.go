package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nocookies/internal/dom"
)

// Watch handles page immediately and then every RescanInterval until ctx
// is cancelled, catching dialogs injected after load. A tick is skipped
// once the page's origin is processed. Only critical errors stop it.
func (a *Agent) Watch(ctx context.Context, page dom.Document) error {
	interval := a.cfg.RescanInterval
	if interval <= 0 {
		interval = DefaultConfig().RescanInterval
	}

	if err := a.pass(ctx, page); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		processed, err := a.memory.CheckIfProcessed(ctx, page.URL())
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isCriticalError(err) {
				return stepError(StateCheckGate, err)
			}
			processed = false
		}
		if processed {
			continue
		}

		if err := a.pass(ctx, page); err != nil {
			return err
		}
	}
}

// pass runs Handle and filters its error: nil when ctx ended the pass or
// the failure is recoverable.
func (a *Agent) pass(ctx context.Context, page dom.Document) error {
	_, err := a.Handle(ctx, page)
	if err == nil || ctx.Err() != nil {
		return nil
	}
	if isCriticalError(err) {
		return err
	}
	a.log.Warn("consent pass failed", zap.Error(err))
	return nil
}
