// Package runner ties a browser driver to the coordinator and the page
// agent: it opens tabs, runs the consent pass on them and keeps the
// cookie janitor going while tabs are watched.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nocookies/internal/agent"
	"nocookies/internal/browser"
	"nocookies/internal/consent"
	"nocookies/internal/coordinator"
)

type Options struct {
	Agent         agent.Config
	SweepInterval time.Duration
	Recorder      agent.Recorder
}

type Runner struct {
	driver  browser.Driver
	coord   *coordinator.Coordinator
	scanner *consent.Scanner
	opts    Options
	log     *zap.Logger
}

func New(driver browser.Driver, coord *coordinator.Coordinator, scanner *consent.Scanner, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		driver:  driver,
		coord:   coord,
		scanner: scanner,
		opts:    opts,
		log:     log.Named("runner"),
	}
}

// newAgent returns a fresh agent; each tab gets its own in-flight guard.
func (r *Runner) newAgent() *agent.Agent {
	var opts []agent.Option
	if r.opts.Recorder != nil {
		opts = append(opts, agent.WithRecorder(r.opts.Recorder))
	}
	return agent.New(r.scanner, r.coord, r.coord, r.opts.Agent, r.log, opts...)
}

// Visit opens url, runs one consent pass, sweeps cookies once and closes
// the tab.
func (r *Runner) Visit(ctx context.Context, url string) (agent.Outcome, error) {
	tab, err := r.driver.Open(ctx, url)
	if err != nil {
		return agent.Outcome{}, fmt.Errorf("open %s: %w", url, err)
	}
	defer r.closeTab(tab)

	o, err := r.newAgent().Handle(ctx, tab)
	if err != nil {
		return o, err
	}

	if n := r.coord.Sweep(ctx, tab); n > 0 {
		r.log.Debug("cookies removed after visit", zap.String("url", url), zap.Int("count", n))
	}
	return o, nil
}

// Watch opens every url and keeps re-scanning them until ctx is cancelled
// or a tab fails critically. Tabs share one browser context, so a single
// cookie janitor serves all of them.
func (r *Runner) Watch(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("no urls to watch")
	}

	tabs := make([]browser.Tab, 0, len(urls))
	defer func() {
		for _, tab := range tabs {
			r.closeTab(tab)
		}
	}()

	for _, u := range urls {
		tab, err := r.driver.Open(ctx, u)
		if err != nil {
			return fmt.Errorf("open %s: %w", u, err)
		}
		tabs = append(tabs, tab)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tab := range tabs {
		g.Go(func() error {
			return r.newAgent().Watch(gctx, tab)
		})
	}
	if r.opts.SweepInterval > 0 {
		jar := tabs[0]
		g.Go(func() error {
			r.coord.WatchCookies(gctx, jar, r.opts.SweepInterval)
			return nil
		})
	}

	r.log.Info("watching", zap.Int("tabs", len(tabs)))
	return g.Wait()
}

func (r *Runner) closeTab(tab browser.Tab) {
	if err := tab.Close(); err != nil {
		r.log.Debug("close tab", zap.String("url", tab.URL()), zap.Error(err))
	}
}
