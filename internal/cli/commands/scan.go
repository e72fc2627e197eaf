package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"nocookies/internal/agent"
	"nocookies/internal/cli/ui"
	"nocookies/internal/consent"
	"nocookies/internal/dom/htmldoc"
)

// ScanHandler runs the agent over a saved HTML file. Scripts do not run,
// so a second screen that only appears after a click stays hidden.
type ScanHandler struct {
	scanner *consent.Scanner
	memory  agent.Memory
	gate    agent.Gate
	cfg     agent.Config
	log     *zap.Logger
	out     io.Writer
}

func NewScanHandler(scanner *consent.Scanner, memory agent.Memory, gate agent.Gate, cfg agent.Config, log *zap.Logger, out io.Writer) *ScanHandler {
	return &ScanHandler{scanner: scanner, memory: memory, gate: gate, cfg: cfg, log: log, out: out}
}

func (h *ScanHandler) Scan(ctx context.Context, path, pageURL string) (agent.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return agent.Outcome{}, err
	}
	defer f.Close()

	if pageURL == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		pageURL = "file://" + filepath.ToSlash(abs)
	}

	doc, err := htmldoc.Parse(f, pageURL)
	if err != nil {
		return agent.Outcome{}, fmt.Errorf("parse %s: %w", path, err)
	}

	a := agent.New(h.scanner, h.memory, h.gate, h.cfg, h.log, agent.WithSleep(noSleep))
	o, err := a.Handle(ctx, doc)
	if err != nil {
		return o, err
	}

	PrintOutcome(h.out, o)
	for _, c := range doc.Clicks() {
		target := c.Tag
		if c.ID != "" {
			target += "#" + c.ID
		}
		fmt.Fprintf(h.out, "  "+ui.ColorYellow+"would click"+ui.ColorReset+" %s %q\n", target, strings.TrimSpace(c.Text))
	}
	return o, nil
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
