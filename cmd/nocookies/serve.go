package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nocookies/internal/cli"
	"nocookies/internal/cli/commands"
	"nocookies/internal/server"
)

func serveCmd() *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the control API over HTTP",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}

			var visitor server.Visitor
			if !noBrowser {
				r, driver, err := a.newRunner(ctx)
				if err != nil {
					return err
				}
				defer closeDriver(a, driver)
				visitor = r
			}

			var runs server.RunLister
			if a.runs != nil {
				runs = a.runs
			}
			return server.New(a.cfg, a.log.Logger, a.coord, visitor, runs).Run(ctx)
		}),
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not launch a browser; /api/visit answers 503")
	return cmd
}

func shellCmd() *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var visit *commands.VisitHandler
			if !noBrowser {
				r, driver, err := a.newRunner(ctx)
				if err != nil {
					a.log.Warn("browser unavailable, visit disabled", zap.Error(err))
				} else {
					defer closeDriver(a, driver)
					visit = commands.NewVisitHandler(r, out)
				}
			}

			cli.New(a.log.Logger, out, version, visit,
				commands.NewStatusHandler(a.coord, out),
				commands.NewRunsHandler(a.runLister(), out),
			).Run(ctx)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "start without launching a browser")
	return cmd
}
