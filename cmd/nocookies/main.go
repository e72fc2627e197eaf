package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "nocookies",
		Short: "🍪 Rejects non-essential cookies on the pages it opens",
		Long: `nocookies drives a browser, finds cookie-consent dialogs and answers them:
it clicks "reject" when there is one, otherwise opens the settings, switches
off every non-essential category and confirms. Sites are handled once per
session; essential cookies and storage (session, auth, security) are kept.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(visitCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(shellCmd())
	rootCmd.AddCommand(enableCmd())
	rootCmd.AddCommand(disableCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp builds the shared app for a command and tears it down after.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nocookies", version)
		},
	}
}
