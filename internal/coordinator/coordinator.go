// Package coordinator is the background side of the consent agent. It owns
// the session's Site Memory and answers page agents through
// request/response messages; nothing else touches the memory.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nocookies/internal/consent"
	"nocookies/internal/settings"
	"nocookies/internal/sitememory"
)

type Action string

const (
	ActionCheckIfProcessed Action = "checkIfProcessed"
	ActionMarkAsProcessed  Action = "markAsProcessed"
	ActionClearCache       Action = "clearCache"
	ActionListOrigins      Action = "listOrigins"
)

type Request struct {
	Action Action `json:"action"`
	URL    string `json:"url,omitempty"`
}

type Response struct {
	IsProcessed bool                `json:"isProcessed"`
	Success     bool                `json:"success"`
	Origins     []sitememory.Record `json:"origins,omitempty"`
	Error       string              `json:"error,omitempty"`
}

var ErrClosed = errors.New("coordinator stopped")

type envelope struct {
	req   Request
	reply chan Response
}

type Coordinator struct {
	memory  *sitememory.Service
	flags   settings.Store
	scanner *consent.Scanner
	log     *zap.Logger

	inbox chan envelope
	done  chan struct{}
}

func New(memory *sitememory.Service, flags settings.Store, scanner *consent.Scanner, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		memory:  memory,
		flags:   flags,
		scanner: scanner,
		log:     log.Named("coordinator"),
		inbox:   make(chan envelope),
		done:    make(chan struct{}),
	}
}

// Run serves requests until ctx is cancelled. Cancellation is the end of
// the browsing session: the memory is cleared before Run returns.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := settings.EnsureDefaults(ctx, c.flags); err != nil {
		c.log.Warn("could not initialise enable flag", zap.Error(err))
	}
	c.log.Info("coordinator started")

	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			n := c.memory.Clear()
			c.log.Info("session ended - cache cleared", zap.Int("origins", n))
			return nil
		case env := <-c.inbox:
			env.reply <- c.handle(env.req)
		}
	}
}

func (c *Coordinator) handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("error handling message", zap.String("action", string(req.Action)), zap.Any("panic", r))
			resp = Response{Error: fmt.Sprint(r)}
		}
	}()

	switch req.Action {
	case ActionCheckIfProcessed:
		return Response{IsProcessed: c.memory.IsProcessed(req.URL)}
	case ActionMarkAsProcessed:
		origin := c.memory.MarkProcessed(req.URL)
		c.log.Info("cached", zap.String("origin", origin))
		return Response{Success: true}
	case ActionClearCache:
		n := c.memory.Clear()
		c.log.Info("cache cleared", zap.Int("origins", n))
		return Response{Success: true}
	case ActionListOrigins:
		return Response{Success: true, Origins: c.memory.Records()}
	default:
		return Response{Error: fmt.Sprintf("unknown action %q", req.Action)}
	}
}

// Send delivers req and waits for the reply.
func (c *Coordinator) Send(ctx context.Context, req Request) (Response, error) {
	env := envelope{req: req, reply: make(chan Response, 1)}

	select {
	case c.inbox <- env:
	case <-c.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	select {
	case resp := <-env.reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func (c *Coordinator) CheckIfProcessed(ctx context.Context, url string) (bool, error) {
	resp, err := c.Send(ctx, Request{Action: ActionCheckIfProcessed, URL: url})
	if err != nil {
		return false, err
	}
	if resp.Error != "" {
		return false, errors.New(resp.Error)
	}
	return resp.IsProcessed, nil
}

func (c *Coordinator) MarkAsProcessed(ctx context.Context, url string) error {
	return c.expectSuccess(ctx, Request{Action: ActionMarkAsProcessed, URL: url})
}

func (c *Coordinator) ClearCache(ctx context.Context) error {
	return c.expectSuccess(ctx, Request{Action: ActionClearCache})
}

func (c *Coordinator) expectSuccess(ctx context.Context, req Request) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	if !resp.Success {
		return fmt.Errorf("%s: not acknowledged", req.Action)
	}
	return nil
}

// Enabled reads the persisted enable flag; unset means enabled.
func (c *Coordinator) Enabled(ctx context.Context) (bool, error) {
	return settings.Enabled(ctx, c.flags)
}

func (c *Coordinator) SetEnabled(ctx context.Context, enabled bool) error {
	if err := settings.SetEnabled(ctx, c.flags, enabled); err != nil {
		return fmt.Errorf("store enable flag: %w", err)
	}
	c.log.Info("enable flag changed", zap.Bool("enabled", enabled))
	return nil
}

// Origins lists the origins handled so far in this session.
func (c *Coordinator) Origins(ctx context.Context) ([]sitememory.Record, error) {
	resp, err := c.Send(ctx, Request{Action: ActionListOrigins})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return resp.Origins, nil
}

// WatchCookies removes non-essential cookies from jar every interval while
// the agent is enabled. It returns when ctx is cancelled.
func (c *Coordinator) WatchCookies(ctx context.Context, jar consent.CookieJar, interval time.Duration) {
	if c.scanner == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.Sweep(ctx, jar)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs one cookie janitor pass and returns the number of cookies
// removed. It does nothing while the agent is disabled.
func (c *Coordinator) Sweep(ctx context.Context, jar consent.CookieJar) int {
	if c.scanner == nil {
		return 0
	}
	enabled, err := c.Enabled(ctx)
	if err != nil {
		c.log.Warn("enable flag unreadable, assuming enabled", zap.Error(err))
	}
	if !enabled {
		return 0
	}

	n, err := c.scanner.SweepCookies(ctx, jar)
	if err != nil {
		c.log.Warn("cookie sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		c.log.Info("removed non-essential cookies", zap.Int("count", n))
	}
	return n
}
