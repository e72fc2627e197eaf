package commands

import (
	"context"
	"fmt"
	"io"

	"nocookies/internal/cli/ui"
	"nocookies/internal/sitememory"
)

type Control interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	ClearCache(ctx context.Context) error
	Origins(ctx context.Context) ([]sitememory.Record, error)
}

// StatusHandler manages the enable flag and the processed-site cache.
type StatusHandler struct {
	ctl Control
	out io.Writer
}

func NewStatusHandler(ctl Control, out io.Writer) *StatusHandler {
	return &StatusHandler{ctl: ctl, out: out}
}

func (h *StatusHandler) Status(ctx context.Context) error {
	enabled, err := h.ctl.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("read enable flag: %w", err)
	}
	fmt.Fprintln(h.out, ui.ColorBold+"Agent:"+ui.ColorReset+" "+ui.FormatEnabled(enabled))

	origins, err := h.ctl.Origins(ctx)
	if err != nil {
		return fmt.Errorf("list processed sites: %w", err)
	}
	if len(origins) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"No sites processed this session"+ui.ColorReset)
		return nil
	}
	fmt.Fprintf(h.out, ui.ColorBold+ui.IconList+" Processed this session (%d):"+ui.ColorReset+"\n", len(origins))
	for _, r := range origins {
		fmt.Fprintf(h.out, "  "+ui.ColorGray+"[%s]"+ui.ColorReset+" %s\n", r.ProcessedAt.Format("15:04:05"), r.Origin)
	}
	return nil
}

func (h *StatusHandler) SetEnabled(ctx context.Context, enabled bool) error {
	if err := h.ctl.SetEnabled(ctx, enabled); err != nil {
		return err
	}
	fmt.Fprintln(h.out, ui.ColorBold+"Agent:"+ui.ColorReset+" "+ui.FormatEnabled(enabled))
	return nil
}

func (h *StatusHandler) ClearCache(ctx context.Context) error {
	origins, err := h.ctl.Origins(ctx)
	if err != nil {
		return fmt.Errorf("list processed sites: %w", err)
	}
	n := len(origins)
	if err := h.ctl.ClearCache(ctx); err != nil {
		return err
	}
	fmt.Fprintf(h.out, ui.ColorGreen+ui.IconBroom+" Forgot %d site(s)"+ui.ColorReset+"\n", n)
	return nil
}
