// Package cli is the interactive shell: one long-lived browser session
// driven by typed commands.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"nocookies/internal/cli/commands"
	"nocookies/internal/cli/ui"
)

type Shell struct {
	log     *zap.Logger
	out     io.Writer
	version string

	visit  *commands.VisitHandler
	status *commands.StatusHandler
	runs   *commands.RunsHandler

	rl       *readline.Instance
	fallback *lineReader
}

func New(log *zap.Logger, out io.Writer, version string, visit *commands.VisitHandler, status *commands.StatusHandler, runs *commands.RunsHandler) *Shell {
	s := &Shell{
		log:     log,
		out:     out,
		version: version,
		visit:   visit,
		status:  status,
		runs:    runs,
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "🍪 > ",
		HistoryFile:     ".nocookies-history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Warn("readline unavailable, falling back to plain input", zap.Error(err))
		s.fallback = newLineReader(os.Stdin, out)
	} else {
		s.rl = rl
	}
	return s
}

func (s *Shell) readLine(ctx context.Context) (string, error) {
	if s.rl != nil {
		return s.rl.Readline()
	}
	return s.fallback.ReadLine(ctx, ui.ColorCyan+"> "+ui.ColorReset)
}

func (s *Shell) Run(ctx context.Context) {
	ui.PrintWelcome(s.out, s.version)
	defer func() {
		if s.rl != nil {
			s.rl.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			io.WriteString(s.out, "\n"+ui.ColorCyan+ui.IconWave+" Shutting down..."+ui.ColorReset+"\n")
			return
		default:
		}

		line, err := s.readLine(ctx)
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := s.handleCommand(ctx, line); quit {
			return
		}
	}
}

// handleCommand runs one command line and reports whether the shell
// should exit.
func (s *Shell) handleCommand(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch cmd {
	case "exit", "quit":
		io.WriteString(s.out, ui.ColorCyan+ui.IconWave+" Bye!"+ui.ColorReset+"\n")
		return true

	case "clear":
		ui.ClearScreen(s.out)

	case "visit", "open":
		if s.visit == nil {
			ui.Fail(s.out, "no browser attached", nil)
			return false
		}
		_, err = s.visit.Visit(ctx, arg)

	case "status":
		err = s.status.Status(ctx)

	case "enable":
		err = s.status.SetEnabled(ctx, true)

	case "disable":
		err = s.status.SetEnabled(ctx, false)

	case "clear-cache":
		err = s.status.ClearCache(ctx)

	case "runs":
		n, _ := strconv.Atoi(arg)
		err = s.runs.List(ctx, n)

	default:
		ui.PrintHelp(s.out)
	}

	if err != nil {
		s.log.Debug("command failed", zap.String("command", cmd), zap.Error(err))
		ui.Fail(s.out, cmd+" failed", err)
	}
	return false
}
