package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nocookies/internal/cli/commands"
	"nocookies/internal/cli/ui"
)

func visitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visit <url>...",
		Short: "Open each page once and answer its cookie dialog",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			r, driver, err := a.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeDriver(a, driver)

			h := commands.NewVisitHandler(r, cmd.OutOrStdout())
			var errs []error
			for _, u := range args {
				if _, err := h.Visit(ctx, u); err != nil {
					ui.Fail(cmd.ErrOrStderr(), "visit "+u, err)
					errs = append(errs, err)
				}
				if ctx.Err() != nil {
					break
				}
			}
			return errors.Join(errs...)
		}),
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <url>...",
		Short: "Keep the pages open and answer dialogs as they appear",
		Long: `watch opens one tab per URL and rescans each of them periodically until
interrupted, so dialogs injected late or after navigation are handled too.
Cookies set by the sites are swept in the background.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			r, driver, err := a.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeDriver(a, driver)

			urls := make([]string, 0, len(args))
			for _, u := range args {
				urls = append(urls, commands.NormalizeURL(u))
			}
			a.log.Info("watching", zap.Strings("urls", urls), zap.Duration("interval", a.cfg.Agent.RescanInterval))
			return r.Watch(ctx, urls)
		}),
	}
}

func scanCmd() *cobra.Command {
	var pageURL string
	cmd := &cobra.Command{
		Use:   "scan <file.html>",
		Short: "Dry-run the agent against a saved page without a browser",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			h := commands.NewScanHandler(a.scanner, a.coord, a.coord, a.agentConfig(), a.log.Logger, cmd.OutOrStdout())
			if _, err := h.Scan(ctx, args[0], pageURL); err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "URL the page was saved from (defaults to a file:// URL)")
	return cmd
}
