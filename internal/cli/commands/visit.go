package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"nocookies/internal/agent"
	"nocookies/internal/cli/ui"
)

type Visitor interface {
	Visit(ctx context.Context, url string) (agent.Outcome, error)
}

// VisitHandler opens pages through the runner and reports the outcome.
type VisitHandler struct {
	visitor Visitor
	out     io.Writer
}

func NewVisitHandler(v Visitor, out io.Writer) *VisitHandler {
	return &VisitHandler{visitor: v, out: out}
}

func (h *VisitHandler) Visit(ctx context.Context, rawURL string) (agent.Outcome, error) {
	url := NormalizeURL(rawURL)
	if url == "" {
		return agent.Outcome{}, fmt.Errorf("empty url")
	}

	fmt.Fprintf(h.out, ui.ColorCyan+ui.IconArrow+" Opening %s..."+ui.ColorReset+"\n", url)
	o, err := h.visitor.Visit(ctx, url)
	if err != nil {
		return o, err
	}
	PrintOutcome(h.out, o)
	return o, nil
}

// NormalizeURL adds https:// to bare host names.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return s
}

func PrintOutcome(w io.Writer, o agent.Outcome) {
	icon, color, text := ui.FormatState(string(o.State))
	fmt.Fprintf(w, color+icon+" %s:"+ui.ColorReset+" %s\n", o.Origin, text)
	if o.Clicks > 0 {
		fmt.Fprintf(w, "  "+ui.ColorGray+"clicks:"+ui.ColorReset+" %d", o.Clicks)
		if o.TogglesOff > 0 {
			fmt.Fprintf(w, ui.ColorGray+"  toggles off:"+ui.ColorReset+" %d", o.TogglesOff)
		}
		if o.StorageRemoved > 0 {
			fmt.Fprintf(w, ui.ColorGray+"  storage keys removed:"+ui.ColorReset+" %d", o.StorageRemoved)
		}
		fmt.Fprintln(w)
	}
	if len(o.Trace) > 0 {
		states := make([]string, 0, len(o.Trace))
		for _, s := range o.Trace {
			states = append(states, string(s))
		}
		fmt.Fprintf(w, "  "+ui.ColorGray+"%s"+ui.ColorReset+"\n", strings.Join(states, " → "))
	}
}
