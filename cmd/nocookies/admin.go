package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nocookies/internal/cli/commands"
	"nocookies/internal/migrations"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the agent is enabled",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			return commands.NewStatusHandler(a.coord, cmd.OutOrStdout()).Status(ctx)
		}),
	}
}

func enableCmd() *cobra.Command {
	return setEnabledCmd("enable", "Turn the agent on", true)
}

func disableCmd() *cobra.Command {
	return setEnabledCmd("disable", "Turn the agent off", false)
}

func setEnabledCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if err := a.startCoordinator(ctx); err != nil {
				return err
			}
			if !a.cfg.Database.Enabled() {
				a.log.Warn("DB_HOST not set: the flag only lasts for this process")
			}
			return commands.NewStatusHandler(a.coord, cmd.OutOrStdout()).SetEnabled(ctx, enabled)
		}),
	}
}

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.openStore(); err != nil {
				return err
			}
			return commands.NewRunsHandler(a.runLister(), cmd.OutOrStdout()).List(cmd.Context(), limit)
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "how many runs to show")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.cfg.Database.Enabled() {
				return fmt.Errorf("DB_HOST is not set")
			}
			if len(args) == 1 && args[0] == "down" {
				return migrations.Down(a.cfg, a.log.Logger)
			}
			return migrations.Run(a.cfg, a.log.Logger)
		}),
	}
}
