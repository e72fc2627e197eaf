package commands

import (
	"context"
	"fmt"
	"io"

	"nocookies/internal/cli/ui"
	"nocookies/internal/database"
)

type RunLister interface {
	ListRuns(ctx context.Context, limit, offset int) ([]database.ConsentRun, error)
}

// RunsHandler prints the persisted run history.
type RunsHandler struct {
	runs RunLister
	out  io.Writer
}

func NewRunsHandler(runs RunLister, out io.Writer) *RunsHandler {
	return &RunsHandler{runs: runs, out: out}
}

func (h *RunsHandler) List(ctx context.Context, limit int) error {
	if h.runs == nil {
		return fmt.Errorf("run history needs a database (set DB_HOST)")
	}
	if limit <= 0 {
		limit = 20
	}
	runs, err := h.runs.ListRuns(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(h.out, ui.ColorGray+"No runs recorded"+ui.ColorReset)
		return nil
	}

	fmt.Fprintln(h.out, ui.ColorBold+ui.IconList+" Recent runs:"+ui.ColorReset)
	for _, r := range runs {
		icon, color, text := ui.FormatState(r.State)
		fmt.Fprintf(h.out, ui.ColorGray+"[%s]"+ui.ColorReset+" %s%s %s"+ui.ColorReset+" %s",
			r.StartedAt.Format("2006-01-02 15:04:05"), color, icon, r.Origin, text)
		if r.Clicks > 0 {
			fmt.Fprintf(h.out, ui.ColorGray+" (%d clicks, %d toggles, %d keys)"+ui.ColorReset, r.Clicks, r.TogglesOff, r.StorageRemoved)
		}
		fmt.Fprintln(h.out)
	}
	return nil
}
